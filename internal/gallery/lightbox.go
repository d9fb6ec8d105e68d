package gallery

import "errors"

var (
	ErrEmptyImageSet   = errors.New("lightbox needs at least one image")
	ErrImageOutOfRange = errors.New("image index out of range")
)

// Lightbox is the full-size image overlay. The zero value is closed.
type Lightbox struct {
	images []string
	index  int
	open   bool
}

// Open shows images starting at index.
func (l *Lightbox) Open(images []string, index int) error {
	if len(images) == 0 {
		return ErrEmptyImageSet
	}
	if index < 0 || index >= len(images) {
		return ErrImageOutOfRange
	}
	l.images = images
	l.index = index
	l.open = true
	return nil
}

// Next moves forward, wrapping from the last image to the first.
func (l *Lightbox) Next() int {
	if l.open {
		l.index = (l.index + 1) % len(l.images)
	}
	return l.index
}

// Previous moves back, wrapping from the first image to the last.
func (l *Lightbox) Previous() int {
	if l.open {
		l.index = (l.index - 1 + len(l.images)) % len(l.images)
	}
	return l.index
}

func (l *Lightbox) Close() {
	l.images = nil
	l.index = 0
	l.open = false
}

func (l *Lightbox) IsOpen() bool {
	return l.open
}

func (l *Lightbox) Index() int {
	return l.index
}

func (l *Lightbox) Len() int {
	return len(l.images)
}

// Current returns the image on show, or "" when closed.
func (l *Lightbox) Current() string {
	if !l.open {
		return ""
	}
	return l.images[l.index]
}
