package tumblr

import "tumblrbackup/pkg/naming"

// Kind is the closed set of post types the backup understands
type Kind int

const (
	KindUnsupported Kind = iota
	KindRegular
	KindPhoto
	KindVideo
	KindQuote
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindQuote:
		return "quote"
	case KindLink:
		return "link"
	default:
		return "unsupported"
	}
}

// KindOf maps the type attribute of a post element to a Kind
func KindOf(postType string) Kind {
	switch postType {
	case "regular":
		return KindRegular
	case "photo":
		return KindPhoto
	case "video":
		return KindVideo
	case "quote":
		return KindQuote
	case "link":
		return KindLink
	default:
		return KindUnsupported
	}
}

// Optional is a text field that may be absent from the markup
type Optional struct {
	Value string
	Set   bool
}

// Some returns a set Optional
func Some(v string) Optional {
	return Optional{Value: v, Set: true}
}

func optionalFrom(p *string) Optional {
	if p == nil {
		return Optional{}
	}
	return Some(*p)
}

// OrEmpty returns the value, or "" when unset
func (o Optional) OrEmpty() string {
	if !o.Set {
		return ""
	}
	return o.Value
}

// FullResolutionWidth is the max-width of the photo variant that is saved
const FullResolutionWidth = "1280"

// Post is one parsed post. Only the content field matching Kind is filled.
type Post struct {
	ID          string
	Type        string
	Kind        Kind
	URL         string
	URLWithSlug string
	DateGMT     string
	Tags        []string

	Regular RegularContent
	Photo   PhotoContent
	Video   VideoContent
	Quote   QuoteContent
	Link    LinkContent
}

type RegularContent struct {
	Title Optional
	Body  Optional
}

type PhotoContent struct {
	Caption Optional
	// URLs maps max-width to image URL
	URLs map[string]string
}

// FullResolution returns the 1280 wide variant
func (p PhotoContent) FullResolution() (string, bool) {
	u, ok := p.URLs[FullResolutionWidth]
	return u, ok && u != ""
}

type VideoContent struct {
	Caption Optional
	// Player is the raw embedded player markup, still entity escaped
	Player string
}

type QuoteContent struct {
	Text   Optional
	Source Optional
}

type LinkContent struct {
	Text        Optional
	URL         Optional
	Description Optional
}

// Slug returns the last path segment of the post's url-with-slug
func (p *Post) Slug() string {
	return naming.Slug(p.URLWithSlug)
}

// Blog holds the account details read from the first page
type Blog struct {
	Name        string
	Title       string
	Description string
	TotalPosts  int
}

// Page is one response of the read API
type Page struct {
	Offset int
	Upper  int
	Total  int
	Posts  []Post
	// Err is set when the page could not be fetched or parsed; Posts is then empty
	Err error
}
