// Package models holds the client-side records exchanged with the D_MARA
// backend and the category catalogue that maps UI categories to backend codes.
package models
