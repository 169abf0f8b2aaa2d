package entity

import "fmt"

type NoteVisibility string

const (
	VisibilityPublic    NoteVisibility = "public"
	VisibilityHome      NoteVisibility = "home"
	VisibilityFollowers NoteVisibility = "followers"
	VisibilitySpecified NoteVisibility = "specified"
)

type Note struct {
	Text       string
	Visibility NoteVisibility
}

// NewArticlesNote builds the announcement sent after a cycle that stored new
// articles.
func NewArticlesNote(count int, visibility NoteVisibility) *Note {
	return NewNote(fmt.Sprintf("📰 %d yeni haber!", count), visibility)
}

func NewNote(text string, visibility NoteVisibility) *Note {
	return &Note{
		Text:       text,
		Visibility: visibility,
	}
}
