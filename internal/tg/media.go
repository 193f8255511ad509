package tg

import (
	"github.com/pkg/errors"

	"github.com/iamwavecut/tgward/internal/jsonx"
)

// Media payload types. Optional numeric and string fields stay zero when the
// API omits them; the file_id is the only universally required key.

type PhotoSize struct {
	FileID   string
	Width    int
	Height   int
	FileSize int64
}

func DecodePhotoSize(o jsonx.Object) (*PhotoSize, error) {
	if missing := o.Missing("file_id", "width", "height"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "photo size", Fields: missing}
	}
	p := &PhotoSize{}
	var err error
	if p.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode photo size")
	}
	if p.Width, err = o.Int("width"); err != nil {
		return nil, errors.WithMessage(err, "decode photo size")
	}
	if p.Height, err = o.Int("height"); err != nil {
		return nil, errors.WithMessage(err, "decode photo size")
	}
	if o.Contains("file_size") {
		if p.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode photo size")
		}
	}
	return p, nil
}

type Audio struct {
	FileID    string
	Duration  int
	Performer string
	Title     string
	MimeType  string
	FileSize  int64
}

func DecodeAudio(o jsonx.Object) (*Audio, error) {
	if missing := o.Missing("file_id", "duration"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "audio", Fields: missing}
	}
	a := &Audio{}
	var err error
	if a.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode audio")
	}
	if a.Duration, err = o.Int("duration"); err != nil {
		return nil, errors.WithMessage(err, "decode audio")
	}
	if o.Contains("performer") {
		if a.Performer, err = o.String("performer"); err != nil {
			return nil, errors.WithMessage(err, "decode audio")
		}
	}
	if o.Contains("title") {
		if a.Title, err = o.String("title"); err != nil {
			return nil, errors.WithMessage(err, "decode audio")
		}
	}
	if o.Contains("mime_type") {
		if a.MimeType, err = o.String("mime_type"); err != nil {
			return nil, errors.WithMessage(err, "decode audio")
		}
	}
	if o.Contains("file_size") {
		if a.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode audio")
		}
	}
	return a, nil
}

type Document struct {
	FileID   string
	Thumb    *PhotoSize
	FileName string
	MimeType string
	FileSize int64
}

func DecodeDocument(o jsonx.Object) (*Document, error) {
	if missing := o.Missing("file_id"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "document", Fields: missing}
	}
	d := &Document{}
	var err error
	if d.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode document")
	}
	if o.Contains("thumb") {
		thumbObj, err := o.Object("thumb")
		if err != nil {
			return nil, errors.WithMessage(err, "decode document")
		}
		if d.Thumb, err = DecodePhotoSize(thumbObj); err != nil {
			return nil, errors.WithMessage(err, "decode document")
		}
	}
	if o.Contains("file_name") {
		if d.FileName, err = o.String("file_name"); err != nil {
			return nil, errors.WithMessage(err, "decode document")
		}
	}
	if o.Contains("mime_type") {
		if d.MimeType, err = o.String("mime_type"); err != nil {
			return nil, errors.WithMessage(err, "decode document")
		}
	}
	if o.Contains("file_size") {
		if d.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode document")
		}
	}
	return d, nil
}

type Sticker struct {
	FileID   string
	Width    int
	Height   int
	Emoji    string
	FileSize int64
}

func DecodeSticker(o jsonx.Object) (*Sticker, error) {
	if missing := o.Missing("file_id", "width", "height"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "sticker", Fields: missing}
	}
	s := &Sticker{}
	var err error
	if s.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode sticker")
	}
	if s.Width, err = o.Int("width"); err != nil {
		return nil, errors.WithMessage(err, "decode sticker")
	}
	if s.Height, err = o.Int("height"); err != nil {
		return nil, errors.WithMessage(err, "decode sticker")
	}
	if o.Contains("emoji") {
		if s.Emoji, err = o.String("emoji"); err != nil {
			return nil, errors.WithMessage(err, "decode sticker")
		}
	}
	if o.Contains("file_size") {
		if s.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode sticker")
		}
	}
	return s, nil
}

type Video struct {
	FileID   string
	Width    int
	Height   int
	Duration int
	MimeType string
	FileSize int64
}

func DecodeVideo(o jsonx.Object) (*Video, error) {
	if missing := o.Missing("file_id", "width", "height", "duration"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "video", Fields: missing}
	}
	v := &Video{}
	var err error
	if v.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode video")
	}
	if v.Width, err = o.Int("width"); err != nil {
		return nil, errors.WithMessage(err, "decode video")
	}
	if v.Height, err = o.Int("height"); err != nil {
		return nil, errors.WithMessage(err, "decode video")
	}
	if v.Duration, err = o.Int("duration"); err != nil {
		return nil, errors.WithMessage(err, "decode video")
	}
	if o.Contains("mime_type") {
		if v.MimeType, err = o.String("mime_type"); err != nil {
			return nil, errors.WithMessage(err, "decode video")
		}
	}
	if o.Contains("file_size") {
		if v.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode video")
		}
	}
	return v, nil
}

type Voice struct {
	FileID   string
	Duration int
	MimeType string
	FileSize int64
}

func DecodeVoice(o jsonx.Object) (*Voice, error) {
	if missing := o.Missing("file_id", "duration"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "voice", Fields: missing}
	}
	v := &Voice{}
	var err error
	if v.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode voice")
	}
	if v.Duration, err = o.Int("duration"); err != nil {
		return nil, errors.WithMessage(err, "decode voice")
	}
	if o.Contains("mime_type") {
		if v.MimeType, err = o.String("mime_type"); err != nil {
			return nil, errors.WithMessage(err, "decode voice")
		}
	}
	if o.Contains("file_size") {
		if v.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode voice")
		}
	}
	return v, nil
}

type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
}

func DecodeContact(o jsonx.Object) (*Contact, error) {
	if missing := o.Missing("phone_number", "first_name"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "contact", Fields: missing}
	}
	c := &Contact{}
	var err error
	if c.PhoneNumber, err = o.String("phone_number"); err != nil {
		return nil, errors.WithMessage(err, "decode contact")
	}
	if c.FirstName, err = o.String("first_name"); err != nil {
		return nil, errors.WithMessage(err, "decode contact")
	}
	if o.Contains("last_name") {
		if c.LastName, err = o.String("last_name"); err != nil {
			return nil, errors.WithMessage(err, "decode contact")
		}
	}
	if o.Contains("user_id") {
		if c.UserID, err = o.Int64("user_id"); err != nil {
			return nil, errors.WithMessage(err, "decode contact")
		}
	}
	return c, nil
}

type Location struct {
	Longitude float64
	Latitude  float64
}

func DecodeLocation(o jsonx.Object) (*Location, error) {
	if missing := o.Missing("longitude", "latitude"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "location", Fields: missing}
	}
	l := &Location{}
	var err error
	if l.Longitude, err = o.Float64("longitude"); err != nil {
		return nil, errors.WithMessage(err, "decode location")
	}
	if l.Latitude, err = o.Float64("latitude"); err != nil {
		return nil, errors.WithMessage(err, "decode location")
	}
	return l, nil
}

type Venue struct {
	Location     Location
	Title        string
	Address      string
	FoursquareID string
}

func DecodeVenue(o jsonx.Object) (*Venue, error) {
	if missing := o.Missing("location", "title", "address"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "venue", Fields: missing}
	}
	locObj, err := o.Object("location")
	if err != nil {
		return nil, errors.WithMessage(err, "decode venue")
	}
	loc, err := DecodeLocation(locObj)
	if err != nil {
		return nil, errors.WithMessage(err, "decode venue")
	}
	v := &Venue{Location: *loc}
	if v.Title, err = o.String("title"); err != nil {
		return nil, errors.WithMessage(err, "decode venue")
	}
	if v.Address, err = o.String("address"); err != nil {
		return nil, errors.WithMessage(err, "decode venue")
	}
	if o.Contains("foursquare_id") {
		if v.FoursquareID, err = o.String("foursquare_id"); err != nil {
			return nil, errors.WithMessage(err, "decode venue")
		}
	}
	return v, nil
}

// File is a downloadable file reference returned by getFile.
type File struct {
	FileID   string
	FileSize int64
	FilePath string
}

func DecodeFile(o jsonx.Object) (*File, error) {
	if missing := o.Missing("file_id"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "file", Fields: missing}
	}
	f := &File{}
	var err error
	if f.FileID, err = o.String("file_id"); err != nil {
		return nil, errors.WithMessage(err, "decode file")
	}
	if o.Contains("file_size") {
		if f.FileSize, err = o.Int64("file_size"); err != nil {
			return nil, errors.WithMessage(err, "decode file")
		}
	}
	if o.Contains("file_path") {
		if f.FilePath, err = o.String("file_path"); err != nil {
			return nil, errors.WithMessage(err, "decode file")
		}
	}
	return f, nil
}

type UserProfilePhotos struct {
	TotalCount int
	Photos     [][]PhotoSize
}

func DecodeUserProfilePhotos(o jsonx.Object) (*UserProfilePhotos, error) {
	if missing := o.Missing("total_count", "photos"); len(missing) > 0 {
		return nil, &MissingFieldsError{Entity: "user profile photos", Fields: missing}
	}
	p := &UserProfilePhotos{}
	var err error
	if p.TotalCount, err = o.Int("total_count"); err != nil {
		return nil, errors.WithMessage(err, "decode user profile photos")
	}
	rows, err := o.Array("photos")
	if err != nil {
		return nil, errors.WithMessage(err, "decode user profile photos")
	}
	for _, row := range rows {
		sizes, err := row.Array()
		if err != nil {
			return nil, errors.WithMessage(err, "decode user profile photos")
		}
		decoded := make([]PhotoSize, 0, len(sizes))
		for _, size := range sizes {
			sizeObj, err := size.Object()
			if err != nil {
				return nil, errors.WithMessage(err, "decode user profile photos")
			}
			ps, err := DecodePhotoSize(sizeObj)
			if err != nil {
				return nil, errors.WithMessage(err, "decode user profile photos")
			}
			decoded = append(decoded, *ps)
		}
		p.Photos = append(p.Photos, decoded)
	}
	return p, nil
}
