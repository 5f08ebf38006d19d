package validation

// Choice is a stored key with its display label.
type Choice struct {
	Key   string
	Label string
}

// GenreChoices is the closed set of book genres, in display order.
var GenreChoices = []Choice{
	{"fiction", "Fiction"},
	{"non-fiction", "Non-Fiction"},
	{"science-fiction", "Science Fiction"},
	{"fantasy", "Fantasy"},
	{"mystery", "Mystery"},
	{"romance", "Romance"},
	{"horror", "Horror"},
	{"thriller", "Thriller"},
	{"historical", "Historical"},
	{"biography", "Biography"},
	{"self-help", "Self-Help"},
	{"poetry", "Poetry"},
	{"science", "Science"},
	{"philosophy", "Philosophy"},
	{"travel", "Travel"},
	{"education", "Education"},
	{"business", "Business"},
	{"technology", "Technology"},
	{"other", "Other"},
}

// DefaultGenre is used when a book is stored without an explicit genre.
const DefaultGenre = "other"

// ReservedUsernames cannot be registered, compared case-insensitively.
var ReservedUsernames = []string{"admin", "support", "root", "user", "unknown", "system", "null"}

// PasswordSpecialChars lists the characters that satisfy the "special
// character" password rule.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	genreKeys        = make(map[string]struct{}, len(GenreChoices))
	genreKeyList     = make([]string, 0, len(GenreChoices))
	reservedUsername = make(map[string]struct{}, len(ReservedUsernames))
)

func init() {
	for _, c := range GenreChoices {
		genreKeys[c.Key] = struct{}{}
		genreKeyList = append(genreKeyList, c.Key)
	}
	for _, name := range ReservedUsernames {
		reservedUsername[name] = struct{}{}
	}
}

// GenreLabel returns the display label for a genre key.
func GenreLabel(key string) string {
	for _, c := range GenreChoices {
		if c.Key == key {
			return c.Label
		}
	}
	return ""
}
