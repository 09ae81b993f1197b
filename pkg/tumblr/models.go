package tumblr

import (
	"bytes"
	"encoding/xml"
	"strings"

	errs "tumblrbackup/pkg/errors"
)

// readResponse is the <tumblr> document returned by /api/read
type readResponse struct {
	XMLName   xml.Name     `xml:"tumblr"`
	Tumblelog tumblelogXML `xml:"tumblelog"`
	Posts     postsXML     `xml:"posts"`
}

type tumblelogXML struct {
	Name        string `xml:"name,attr"`
	Title       string `xml:"title,attr"`
	Description string `xml:",chardata"`
}

type postsXML struct {
	Start string    `xml:"start,attr"`
	Total *int      `xml:"total,attr"`
	Posts []postXML `xml:"post"`
}

type postXML struct {
	ID          string `xml:"id,attr"`
	URL         string `xml:"url,attr"`
	URLWithSlug string `xml:"url-with-slug,attr"`
	Type        string `xml:"type,attr"`
	DateGMT     string `xml:"date-gmt,attr"`

	RegularTitle *string `xml:"regular-title"`
	RegularBody  *string `xml:"regular-body"`

	PhotoCaption *string       `xml:"photo-caption"`
	PhotoURLs    []photoURLXML `xml:"photo-url"`

	VideoCaption *string          `xml:"video-caption"`
	VideoPlayers []videoPlayerXML `xml:"video-player"`

	QuoteText   *string `xml:"quote-text"`
	QuoteSource *string `xml:"quote-source"`

	LinkText        *string `xml:"link-text"`
	LinkURL         *string `xml:"link-url"`
	LinkDescription *string `xml:"link-description"`

	Tags []string `xml:"tag"`
}

type photoURLXML struct {
	MaxWidth string `xml:"max-width,attr"`
	URL      string `xml:",chardata"`
}

type videoPlayerXML struct {
	MaxWidth string `xml:"max-width,attr"`
	Inner    string `xml:",innerxml"`
}

// parseReadResponse decodes a read API body leniently: unknown HTML
// entities and unclosed void elements do not fail the parse.
func parseReadResponse(body []byte) (*readResponse, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var resp readResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse read API response")
	}
	if resp.Posts.Total == nil {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "read API response has no posts total")
	}
	return &resp, nil
}

func (r *readResponse) blog() *Blog {
	return &Blog{
		Name:        r.Tumblelog.Name,
		Title:       r.Tumblelog.Title,
		Description: strings.TrimSpace(r.Tumblelog.Description),
		TotalPosts:  *r.Posts.Total,
	}
}

func (r *readResponse) posts() []Post {
	posts := make([]Post, 0, len(r.Posts.Posts))
	for i := range r.Posts.Posts {
		posts = append(posts, r.Posts.Posts[i].toPost())
	}
	return posts
}

func (p *postXML) toPost() Post {
	post := Post{
		ID:          p.ID,
		Type:        p.Type,
		Kind:        KindOf(p.Type),
		URL:         p.URL,
		URLWithSlug: p.URLWithSlug,
		DateGMT:     p.DateGMT,
		Tags:        p.Tags,
	}

	switch post.Kind {
	case KindRegular:
		post.Regular = RegularContent{
			Title: optionalFrom(p.RegularTitle),
			Body:  optionalFrom(p.RegularBody),
		}
	case KindPhoto:
		urls := make(map[string]string, len(p.PhotoURLs))
		for _, u := range p.PhotoURLs {
			urls[u.MaxWidth] = strings.TrimSpace(u.URL)
		}
		post.Photo = PhotoContent{
			Caption: optionalFrom(p.PhotoCaption),
			URLs:    urls,
		}
	case KindVideo:
		var player string
		if len(p.VideoPlayers) > 0 {
			player = p.VideoPlayers[0].Inner
		}
		post.Video = VideoContent{
			Caption: optionalFrom(p.VideoCaption),
			Player:  player,
		}
	case KindQuote:
		post.Quote = QuoteContent{
			Text:   optionalFrom(p.QuoteText),
			Source: optionalFrom(p.QuoteSource),
		}
	case KindLink:
		post.Link = LinkContent{
			Text:        optionalFrom(p.LinkText),
			URL:         optionalFrom(p.LinkURL),
			Description: optionalFrom(p.LinkDescription),
		}
	}

	return post
}
