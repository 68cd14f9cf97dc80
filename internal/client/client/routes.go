package client

import "fmt"

// Routes holds the paths that differ between backend deployments. The rest
// are fixed.
type Routes struct {
	GoogleLogin string
	CurrentUser string
}

func DefaultRoutes() Routes {
	return Routes{
		GoogleLogin: "/api/hobbies/google/",
		CurrentUser: "/dj-rest-auth/user/",
	}
}

const (
	pathProfile      = "/api/hobbies/profile/me/"
	pathItems        = "/api/hobbies/items/"
	pathItemsBulk    = "/api/hobbies/items/bulk_update/"
	pathSearch       = "/api/hobbies/search/"
	pathPosts        = "/api/posts/"
	pathFollowing    = "/api/users/following/"
	pathFollowers    = "/api/users/followers/"
	pathUserSearch   = "/api/users/search/"
	pathNotification = "/api/users/notifications/"
	pathImageProxy   = "/api/users/proxy/image/"
)

func itemPath(id int64) string   { return fmt.Sprintf("%s%d/", pathItems, id) }
func postPath(id int64) string   { return fmt.Sprintf("%s%d/", pathPosts, id) }
func likePath(id int64) string   { return fmt.Sprintf("%s%d/like/", pathPosts, id) }
func followPath(id int64) string { return fmt.Sprintf("/api/users/%d/follow/", id) }
