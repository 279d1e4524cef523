package keypad

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Source yields one raw sample per poll without blocking.
type Source interface {
	// Poll returns the key currently pressed, or NoKey.
	Poll(now time.Time) (Key, error)

	// Close releases the source.
	Close() error
}

// Press is one key held for Hold. A zero Hold lasts a single poll.
type Press struct {
	Key  Key
	Hold time.Duration
}

// ParseLine parses a line of typed keys. Each character is one press;
// a press may carry a hold duration as "K:duration", e.g. "*:2500ms".
// Letters are case-insensitive.
func ParseLine(line string) ([]Press, error) {
	var presses []Press
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if unicode.IsSpace(r) {
			continue
		}
		k := Key(unicode.ToUpper(r))
		if r > unicode.MaxASCII || !k.Valid() {
			return nil, fmt.Errorf("keypad: invalid key %q", r)
		}
		p := Press{Key: k}

		if i+1 < len(rs) && rs[i+1] == ':' {
			j := i + 2
			for j < len(rs) && !unicode.IsSpace(rs[j]) {
				j++
			}
			d, err := time.ParseDuration(string(rs[i+2 : j]))
			if err != nil {
				return nil, fmt.Errorf("keypad: hold for %q: %w", r, err)
			}
			p.Hold = d
			i = j - 1
		}
		presses = append(presses, p)
	}
	return presses, nil
}

// TextSource replays presses parsed from a line-oriented reader such as a
// terminal. Consecutive presses are separated by one released poll.
type TextSource struct {
	presses <-chan Press
	closer  io.Closer

	cur       *Press
	until     time.Time
	closeOnce sync.Once
}

// NewTextSource starts reading lines from r in the background.
// If r is an io.Closer it is closed by Close.
func NewTextSource(r io.Reader) *TextSource {
	ch := make(chan Press, 64)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			presses, err := ParseLine(line)
			if err != nil {
				log.Printf("keypad: %v", err)
				continue
			}
			for _, p := range presses {
				ch <- p
			}
		}
		if err := sc.Err(); err != nil {
			log.Printf("keypad: read: %v", err)
		}
	}()

	s := newPressSource(ch)
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func newPressSource(ch <-chan Press) *TextSource {
	return &TextSource{presses: ch}
}

// Poll returns the key of the press in progress, a release between presses,
// or the next queued press.
func (s *TextSource) Poll(now time.Time) (Key, error) {
	if s.cur != nil {
		if now.Before(s.until) {
			return s.cur.Key, nil
		}
		s.cur = nil
		return NoKey, nil
	}

	select {
	case p, ok := <-s.presses:
		if !ok {
			return NoKey, nil
		}
		s.cur = &p
		s.until = now.Add(p.Hold)
		return p.Key, nil
	default:
		return NoKey, nil
	}
}

// Close closes the underlying reader, if it is closable.
func (s *TextSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}
