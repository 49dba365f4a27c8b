package ai

// Chunk is one unit of generated output. Providers emit different shapes on
// the wire; each adapter normalizes to one of the two variants below, so
// consumers only ever call Text.
type Chunk interface {
	Text() string
}

// TextChunk is a bare string fragment, used by providers whose stream carries
// plain text.
type TextChunk string

func (c TextChunk) Text() string { return string(c) }

// DeltaChunk is a structured fragment with an explicit content field, used by
// providers that stream OpenAI-style delta objects.
type DeltaChunk struct {
	Content string
}

func (c DeltaChunk) Text() string { return c.Content }
