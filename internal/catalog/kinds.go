package catalog

// Store kind names for each entity type.
const (
	KindChapter        = "chapter"
	KindBook           = "book"
	KindMetadata       = "metadata"
	KindChapterContent = "chaptercontent"
	KindDeadLetter     = "deadletter"
)
