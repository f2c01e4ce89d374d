package domain

// Subject groups materials, books and quizzes.
type Subject struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	Level          string `json:"level"`
	TotalMaterials int    `json:"totalMaterials"`
	TotalQuizzes   int    `json:"totalQuizzes"`
}

// Material is a learning unit inside a subject.
type Material struct {
	ID              string `json:"id"`
	SubjectID       string `json:"subjectId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration"`
	Difficulty      string `json:"difficulty"`
	Content         string `json:"content"`
	ImageURL        string `json:"imageUrl,omitempty"`
	VideoURL        string `json:"videoUrl,omitempty"`
	Order           int    `json:"order"`
}

// BookChapter is a page range inside a book.
type BookChapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PageStart int    `json:"pageStart"`
	PageEnd   int    `json:"pageEnd"`
	Summary   string `json:"summary"`
}

type Book struct {
	ID            string        `json:"id"`
	SubjectID     string        `json:"subjectId"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Description   string        `json:"description"`
	CoverURL      string        `json:"coverUrl"`
	PDFURL        string        `json:"pdfUrl,omitempty"`
	Pages         int           `json:"pages"`
	Rating        float64       `json:"rating"`
	DownloadCount int           `json:"downloadCount"`
	Chapters      []BookChapter `json:"chapters"`
}

// SearchResult bundles catalog matches for a free-text query.
type SearchResult struct {
	Subjects  []Subject  `json:"subjects"`
	Materials []Material `json:"materials"`
	Books     []Book     `json:"books"`
}
