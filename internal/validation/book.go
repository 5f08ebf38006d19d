package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxDescriptionLength  = 2000
	MinDescriptionLength  = 10
	MinReadingListNameLen = 3
	MaxReadingListNameLen = 50
	MinPublicationYear    = 1000

	// DateLayout is the only accepted publication date format.
	DateLayout = "2006-01-02"
)

// Caller-side uniqueness messages.
const (
	MsgTitleTaken       = "You already have a book with this title."
	MsgReadingListTaken = "You already have a reading list with this name."
)

var (
	titleCharset    = regexp.MustCompile(`^[\w\s.,!'"()-]+$`)
	authorsCharset  = regexp.MustCompile(`^[\p{L}\p{N}_\s.,]+$`)
	authorNameBad   = regexp.MustCompile(`^[^A-Za-z. ]+$`)
	listNameCharset = regexp.MustCompile(`^[\p{L}\p{N}_\s-]+$`)
)

// Title trims and title-cases raw and rejects empty, symbol-only, markup or
// emoji-bearing titles.
func Title(raw string) (string, error) {
	title := titleCase(strings.TrimSpace(raw))

	if title == "" {
		return "", invalid("Title cannot be empty. Please enter a valid title.")
	}
	if containsDoubledSymbol(title) {
		return "", invalid("Title contains invalid repeated symbols like '__' or '..'.")
	}
	if !containsASCIIAlnum(title) {
		return "", invalid("Title cannot be only special characters.")
	}
	if !isWordRune(firstRune(title)) || !isWordRune(lastRune(title)) {
		return "", invalid("Title cannot start or end with a special character.")
	}
	if containsEmoji(title) {
		return "", invalid("Title cannot contain emojis or non-text symbols.")
	}
	if !titleCharset.MatchString(title) {
		return "", invalid("Title contains unsupported characters. Use only letters, numbers, and basic punctuation.")
	}
	if containsMarkup(title) {
		return "", invalid("Title contains HTML or script tags.")
	}
	return title, nil
}

// Authors validates a comma separated author list and returns it re-joined
// as "Name, Name" in title case.
func Authors(raw string) (string, error) {
	authors := strings.TrimSpace(raw)

	if authors == "" {
		return "", invalid("Author field cannot be empty. Please enter a valid author name.")
	}
	if !authorsCharset.MatchString(authors) {
		return "", invalid("Authors field contains unsupported characters.")
	}
	if containsEmoji(authors) {
		return "", invalid("Authors field cannot contain emojis.")
	}
	if containsMarkup(authors) {
		return "", invalid("Authors contains HTML or script tags. Please enter a valid author name.")
	}

	var names []string
	for _, part := range strings.Split(authors, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", invalid("No valid author names found.")
	}

	for i, name := range names {
		if authorNameBad.MatchString(name) {
			return "", invalid("Author name '%s' contains invalid characters.", name)
		}
		if containsDoubledSymbol(name) {
			return "", invalid("Author name '%s' contains invalid repeated symbols.", name)
		}
		names[i] = titleCase(name)
	}
	return strings.Join(names, ", "), nil
}

// Genre lower-cases raw and checks it against GenreChoices.
func Genre(raw string) (string, error) {
	genre := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := genreKeys[genre]; !ok {
		return "", invalid("Invalid genre. Allowed genres are: %s.", strings.Join(genreKeyList, ", "))
	}
	return genre, nil
}

// PDFFile checks the name of an uploaded file. Content is not inspected.
func PDFFile(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", invalid("File is required.")
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return "", invalid("Only PDF files are allowed.")
	}
	return filename, nil
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero time,
// which PublicationDate rejects.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, invalid("Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return d, nil
}

// PublicationDate rejects missing dates, dates after today and dates before
// year 1000. Only the calendar day of both arguments is compared.
func PublicationDate(value, today time.Time) (time.Time, error) {
	if value.IsZero() {
		return time.Time{}, invalid("Publication date cannot be empty. Please provide a valid date.")
	}
	day := calendarDay(value)
	if day.After(calendarDay(today)) {
		return time.Time{}, invalid("Publication date cannot be in the future.")
	}
	if day.Year() < MinPublicationYear {
		return time.Time{}, invalid("Publication date seems unrealistically old.")
	}
	return day, nil
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Description trims raw. An empty description is valid.
func Description(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return description, nil
	}

	n := utf8.RuneCountInString(description)
	if n > MaxDescriptionLength {
		return "", invalid("Description cannot exceed %d characters.", MaxDescriptionLength)
	}
	if n < MinDescriptionLength {
		return "", invalid("Description is too short. Please provide more details.")
	}
	if containsMarkup(description) {
		return "", invalid("Description contains HTML or script tags, which are not allowed.")
	}
	if hasCharRun(description, 5) {
		return "", invalid("Description contains excessive repeated characters.")
	}
	if !containsASCIIAlnum(description) {
		return "", invalid("Description must contain at least some letters or numbers.")
	}
	return description, nil
}

// ReadingListName trims raw and checks its length and character set.
func ReadingListName(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	n := utf8.RuneCountInString(name)
	if n < MinReadingListNameLen {
		return "", invalid("Reading list name must be at least %d characters long.", MinReadingListNameLen)
	}
	if n > MaxReadingListNameLen {
		return "", invalid("Name must be between %d and %d characters.", MinReadingListNameLen, MaxReadingListNameLen)
	}
	if !listNameCharset.MatchString(name) {
		return "", invalid("Name can only contain letters, numbers, spaces, hyphens, and underscores.")
	}
	if containsMarkup(name) {
		return "", invalid("Reading list name contains HTML or script tags, which are not allowed.")
	}
	return name, nil
}
