package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

func newTestAggregator(t *testing.T, f Fetcher, opts ...Option) (*Aggregator, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	a := NewAggregator(f, models.DefaultCatalogue(), append([]Option{WithScheduler(sched)}, opts...)...)
	t.Cleanup(a.Close)
	return a, sched
}

func titles(rs []Result) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return out
}

func TestAggregator_DebounceSendsOneRequest(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{
		models.CodeMusic: {media(models.CodeMusic, 1, "Love Story")},
	}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Music, ""))

	for _, q := range []string{"t", "ta", "tay", "tayl", "taylor"} {
		require.NoError(t, a.Input(q))
	}
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, Pending, a.View().State)
	assert.Empty(t, f.Calls())

	sched.Fire()

	require.Equal(t, []call{{Code: models.CodeMusic, Query: "taylor"}}, f.Calls())
	v := a.View()
	assert.Equal(t, Displaying, v.State)
	assert.Equal(t, []string{"Love Story"}, titles(v.Results))
	assert.Equal(t, -1, v.Highlight)
}

func TestAggregator_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFetcher{
		byQuery: map[string][]string{
			"old": {media(models.CodeMovie, 1, "Interstellar")},
			"new": {media(models.CodeMovie, 2, "Inception"), media(models.CodeMovie, 3, "Insomnia")},
		},
		hook: func(_ context.Context, c call) {
			if c.Query == "old" {
				close(started)
				<-release
			}
		},
	}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Movie, ""))

	var mu sync.Mutex
	var shown [][]string
	a.OnView(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		if v.State == Displaying {
			shown = append(shown, titles(v.Results))
		}
	})

	require.NoError(t, a.Input("old"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Fire()
	}()
	<-started

	require.NoError(t, a.Input("new"))
	sched.Fire()
	assert.Equal(t, []string{"Inception", "Insomnia"}, titles(a.View().Results))

	// the answer for "old" arrives last and must not replace the list
	close(release)
	<-done

	v := a.View()
	assert.Equal(t, "new", v.Query)
	assert.Equal(t, Displaying, v.State)
	assert.Equal(t, []string{"Inception", "Insomnia"}, titles(v.Results))
	assert.Len(t, f.Calls(), 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"Inception", "Insomnia"}}, shown)
}

func TestAggregator_InputCancelsInFlightRequest(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	f := &fakeFetcher{hook: func(ctx context.Context, c call) {
		if c.Query == "slow" {
			close(started)
			<-ctx.Done()
			close(cancelled)
		}
	}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Music, ""))

	require.NoError(t, a.Input("slow"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Fire()
	}()
	<-started

	require.NoError(t, a.Input("slower"))
	<-cancelled
	<-done
	assert.Equal(t, Pending, a.View().State)
}

func TestAggregator_TalentFansOutAndLabels(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{
		models.CodeActor: {media(models.CodeActor, 1, "Actor One"), media(models.CodeActor, 2, "Actor Two")},
		models.CodeIdol: {
			`{"id":"ARTIST_a","name":"Idol A","subtitle":"Artist","type":"IDOL"}`,
			`{"id":"ARTIST_b","name":"Idol B","subtitle":"Artist","type":"IDOL"}`,
			`{"id":"ARTIST_c","name":"Idol C","subtitle":"Artist","type":"IDOL"}`,
		},
	}}
	a, sched := newTestAggregator(t, f, WithParallelism(1))
	require.NoError(t, a.Open(context.Background(), models.Talent, ""))
	require.NoError(t, a.Input("kim"))
	sched.Fire()

	type row struct{ Title, Subtitle string }
	var got []row
	for _, r := range a.View().Results {
		assert.Equal(t, models.Talent, r.Category)
		got = append(got, row{r.Title, r.Subtitle})
	}
	want := []row{
		{"Actor One", models.LabelActor},
		{"Actor Two", models.LabelActor},
		{"Idol A", models.LabelArtist},
		{"Idol B", models.LabelArtist},
		{"Idol C", models.LabelArtist},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, f.Calls(), 2)
}

func TestAggregator_PartialFailureShowsTheRest(t *testing.T) {
	f := &fakeFetcher{
		hits: map[models.Code][]string{
			models.CodeIdol: {`{"id":"ARTIST_a","name":"Idol A","subtitle":"Artist"}`},
		},
		errs: map[models.Code]error{models.CodeActor: errors.New("tmdb down")},
	}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Talent, ""))
	require.NoError(t, a.Input("kim"))
	sched.Fire()

	v := a.View()
	assert.NoError(t, v.Err)
	assert.Equal(t, []string{"Idol A"}, titles(v.Results))
}

func TestAggregator_AllFailedReportsError(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{errs: map[models.Code]error{models.CodeActor: boom, models.CodeIdol: boom}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Talent, ""))
	require.NoError(t, a.Input("kim"))
	sched.Fire()

	v := a.View()
	assert.Equal(t, Displaying, v.State)
	assert.ErrorIs(t, v.Err, boom)
	assert.Empty(t, v.Results)
}

func TestAggregator_BlankInputClears(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMusic: {media(models.CodeMusic, 1, "x")}}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Music, ""))
	require.NoError(t, a.Input("x"))
	sched.Fire()
	require.Len(t, a.View().Results, 1)

	require.NoError(t, a.Input("   "))
	v := a.View()
	assert.Equal(t, Idle, v.State)
	assert.Empty(t, v.Results)
	assert.Zero(t, sched.Pending())
	sched.Fire()
	assert.Len(t, f.Calls(), 1)
}

func TestAggregator_KeyboardNavigation(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMovie: {
		media(models.CodeMovie, 1, "A"), media(models.CodeMovie, 2, "B"), media(models.CodeMovie, 3, "C"),
	}}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Movie, ""))
	require.NoError(t, a.Input("q"))
	sched.Fire()

	var got []int
	for _, k := range []Key{KeyDown, KeyDown, KeyUp, KeyUp, KeyDown} {
		_, ok := a.Key(k)
		assert.False(t, ok)
		got = append(got, a.View().Highlight)
	}
	assert.Equal(t, []int{0, 1, 0, 2, 0}, got)

	require.NoError(t, a.Input("qq"))
	assert.Equal(t, -1, a.View().Highlight)
}

func TestAggregator_UpFromNothingGoesToLast(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMovie: {
		media(models.CodeMovie, 1, "A"), media(models.CodeMovie, 2, "B"),
	}}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Movie, ""))
	require.NoError(t, a.Input("q"))
	sched.Fire()

	a.Key(KeyUp)
	assert.Equal(t, 1, a.View().Highlight)
}

func TestAggregator_EnterSelects(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMovie: {
		media(models.CodeMovie, 1, "A"), media(models.CodeMovie, 2, "B"),
	}}}

	t.Run("first when nothing highlighted", func(t *testing.T) {
		a, sched := newTestAggregator(t, f)
		require.NoError(t, a.Open(context.Background(), models.Movie, ""))
		require.NoError(t, a.Input("q"))
		sched.Fire()

		r, ok := a.Key(KeyEnter)
		require.True(t, ok)
		assert.Equal(t, "A", r.Title)
		assert.Equal(t, Closed, a.View().State)
	})

	t.Run("highlighted", func(t *testing.T) {
		a, sched := newTestAggregator(t, f)
		require.NoError(t, a.Open(context.Background(), models.Movie, ""))
		require.NoError(t, a.Input("q"))
		sched.Fire()
		a.Key(KeyDown)
		a.Key(KeyDown)

		r, ok := a.Key(KeyEnter)
		require.True(t, ok)
		assert.Equal(t, "B", r.Title)
	})

	t.Run("nothing to select", func(t *testing.T) {
		a, _ := newTestAggregator(t, f)
		require.NoError(t, a.Open(context.Background(), models.Movie, ""))
		_, ok := a.Key(KeyEnter)
		assert.False(t, ok)
		assert.Equal(t, Idle, a.View().State)
	})
}

func TestAggregator_EscDropsPendingSearch(t *testing.T) {
	f := &fakeFetcher{}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Music, ""))
	require.NoError(t, a.Input("x"))

	a.Key(KeyEsc)
	assert.Equal(t, Closed, a.View().State)
	assert.Zero(t, sched.Pending())
	sched.Fire()
	assert.Empty(t, f.Calls())
	assert.ErrorIs(t, a.Input("y"), ErrClosed)
}

func TestAggregator_MatchDate(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMatch: {
		`{"type":"FOOTBALL","league":"Premier League","home":"Arsenal","away":"Chelsea","time":"20:00","home_score":2,"away_score":null}`,
	}}}
	a, sched := newTestAggregator(t, f)
	require.NoError(t, a.Open(context.Background(), models.Matches, "2025-03-01"))
	require.NoError(t, a.Input("arsenal"))
	sched.Fire()

	require.Equal(t, []call{{Code: models.CodeMatch, Query: "arsenal", Date: "2025-03-01"}}, f.Calls())
	rs := a.View().Results
	require.Len(t, rs, 1)
	assert.Equal(t, "Arsenal vs Chelsea", rs[0].Title)
	assert.Equal(t, "Premier League", rs[0].Subtitle)
	assert.Equal(t, "2025-03-01", rs[0].Date)
}

func TestAggregator_SkipsOwnedAndDuplicates(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMovie: {
		media(models.CodeMovie, 1, "Owned"),
		media(models.CodeMovie, 2, "Fresh"),
		media(models.CodeMovie, 2, "Fresh"),
	}}}
	owned := []models.Item{{ID: 9, Category: models.CodeMovie, Title: "owned "}}
	a, sched := newTestAggregator(t, f, WithSkip(OwnedItems(owned, models.DefaultCatalogue())))
	require.NoError(t, a.Open(context.Background(), models.Movie, ""))
	require.NoError(t, a.Input("q"))
	sched.Fire()

	assert.Equal(t, []string{"Fresh"}, titles(a.View().Results))
}

func TestAggregator_OpenRejectsUnknownCategory(t *testing.T) {
	a, _ := newTestAggregator(t, &fakeFetcher{})
	assert.ErrorIs(t, a.Open(context.Background(), models.Category("Cooking"), ""), ErrUnknownCategory)
}

func TestAggregator_RealSchedulerDoesNotLeak(t *testing.T) {
	f := &fakeFetcher{hits: map[models.Code][]string{models.CodeMusic: {media(models.CodeMusic, 1, "Song")}}}
	a := NewAggregator(f, models.DefaultCatalogue(), WithDelay(5*time.Millisecond))

	var (
		mu    sync.Mutex
		views []State
	)
	off := a.OnView(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, v.State)
	})
	defer off()

	require.NoError(t, a.Open(context.Background(), models.Music, ""))
	require.NoError(t, a.Input("so"))
	require.NoError(t, a.Input("song"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range views {
			if s == Displaying {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	a.Close()

	assert.Len(t, f.Calls(), 1)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, views, Fetching)
	assert.Equal(t, Closed, views[len(views)-1])
}
