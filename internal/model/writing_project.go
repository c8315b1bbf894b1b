package model

import "time"

// Genre 写作体裁
type Genre string

const (
	GenreStory      Genre = "story"
	GenreEssay      Genre = "essay"
	GenrePoetry     Genre = "poetry"
	GenreJournalism Genre = "journalism"
	GenreLetter     Genre = "letter"
	GenreSpeech     Genre = "speech"
	GenreJustWrite  Genre = "just-write"
)

func (g Genre) Valid() bool {
	switch g {
	case GenreStory, GenreEssay, GenrePoetry, GenreJournalism, GenreLetter, GenreSpeech, GenreJustWrite:
		return true
	}
	return false
}

// WritingProject 用户的写作项目，WordCount 由 Content 派生，内容每次变更都会重算
// swagger:model WritingProject
type WritingProject struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Genre        Genre     `json:"genre"`
	Content      string    `json:"content"`
	WordCount    int       `json:"word_count"`
	DateModified time.Time `json:"date_modified"`
}
