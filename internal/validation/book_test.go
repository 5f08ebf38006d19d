package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		errPart  string
	}{
		{name: "trims and title-cases", input: "  the Hobbit  ", expected: "The Hobbit"},
		{name: "title-cases every word", input: "war and peace", expected: "War And Peace"},
		{name: "keeps letters after an apostrophe lower-case", input: "the hobbit's tale", expected: "The Hobbit's Tale"},
		{name: "keeps basic punctuation", input: "hello, world (again) now", expected: "Hello, World (Again) Now"},
		{name: "rejects empty", input: "   ", errPart: "cannot be empty"},
		{name: "rejects doubled dots", input: "a..b", errPart: "repeated symbols"},
		{name: "rejects doubled dashes", input: "one--two", errPart: "repeated symbols"},
		{name: "rejects only symbols", input: "!!!", errPart: "only special characters"},
		{name: "rejects markup", input: "<b>Hi</b>", errPart: "special character"},
		{name: "rejects leading symbol", input: "-Dune", errPart: "start or end"},
		{name: "rejects trailing symbol", input: "Dune!", errPart: "start or end"},
		{name: "rejects emoji", input: "Hello 😀 World", errPart: "emojis"},
		{name: "rejects unsupported characters", input: "Hello@World", errPart: "unsupported characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Title(tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				var invalidErr *InvalidInputError
				assert.ErrorAs(t, err, &invalidErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAuthors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		errPart  string
	}{
		{name: "normalizes names", input: " george orwell,  aldous huxley ", expected: "George Orwell, Aldous Huxley"},
		{name: "drops empty segments", input: "orwell, , huxley,", expected: "Orwell, Huxley"},
		{name: "rejects empty", input: "  ", errPart: "cannot be empty"},
		{name: "rejects unsupported characters", input: "Smith; Jones", errPart: "unsupported characters"},
		{name: "accepts accented letters", input: "gabriel garcía márquez, Stanisław Lem", expected: "Gabriel García Márquez, Stanisław Lem"},
		{name: "rejects commas only", input: ", ,", errPart: "No valid author names"},
		{name: "rejects name without letters", input: "Smith, 123", errPart: "Author name '123' contains invalid characters."},
		{name: "rejects doubled symbols", input: "Smith, Jo__nes", errPart: "Author name 'Jo__nes' contains invalid repeated symbols."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Authors(tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGenre(t *testing.T) {
	got, err := Genre("Science-Fiction")
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", got)

	got, err = Genre("  FANTASY ")
	require.NoError(t, err)
	assert.Equal(t, "fantasy", got)

	_, err = Genre("cooking")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Invalid genre. Allowed genres are: fiction, non-fiction"))
	assert.True(t, strings.HasSuffix(err.Error(), "technology, other."))
}

func TestGenreLabel(t *testing.T) {
	assert.Equal(t, "Science Fiction", GenreLabel("science-fiction"))
	assert.Equal(t, "", GenreLabel("cooking"))
}

func TestPDFFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errPart string
	}{
		{name: "accepts pdf", input: "book.pdf"},
		{name: "extension is case-insensitive", input: "Book.PDF"},
		{name: "rejects missing file", input: "", errPart: "File is required."},
		{name: "rejects epub", input: "book.epub", errPart: "Only PDF files are allowed."},
		{name: "rejects bare name", input: "pdf", errPart: "Only PDF files are allowed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PDFFile(tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errPart, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("02/01/2020")
	assert.Error(t, err)
}

func TestPublicationDate(t *testing.T) {
	today := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   time.Time
		errPart string
	}{
		{name: "accepts today", value: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		{name: "accepts year 1000", value: time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rejects missing date", value: time.Time{}, errPart: "cannot be empty"},
		{name: "rejects tomorrow", value: time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), errPart: "in the future"},
		{name: "rejects year 999", value: time.Date(999, 12, 31, 0, 0, 0, 0, time.UTC), errPart: "unrealistically old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicationDate(tt.value, today)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		errPart  string
	}{
		{name: "empty is valid", input: "   ", expected: ""},
		{name: "accepts plain prose", input: "  A perfectly ordinary description.  ", expected: "A perfectly ordinary description."},
		{name: "rejects too long", input: strings.Repeat("a b ", 501), errPart: "cannot exceed 2000"},
		{name: "rejects too short", input: "short", errPart: "too short"},
		{name: "rejects markup", input: "A fine <b>book</b> indeed", errPart: "HTML or script tags"},
		{name: "rejects character runs", input: "Wowwwww this is great", errPart: "excessive repeated characters"},
		{name: "allows blank line runs", input: "Chapter one\n\n\n\n\nChapter two", expected: "Chapter one\n\n\n\n\nChapter two"},
		{name: "rejects no alphanumerics", input: "!!!???!!!???", errPart: "letters or numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Description(tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadingListName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		errPart  string
	}{
		{name: "trims", input: "  Favorites  ", expected: "Favorites"},
		{name: "allows hyphens and underscores", input: "Sci-Fi_2024 picks", expected: "Sci-Fi_2024 picks"},
		{name: "accepts accented letters", input: "Lectures françaises", expected: "Lectures françaises"},
		{name: "rejects too short", input: "ab", errPart: "at least 3"},
		{name: "rejects too long", input: strings.Repeat("a", 51), errPart: "between 3 and 50"},
		{name: "rejects punctuation", input: "My list!", errPart: "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadingListName(tt.input)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
