package datekey

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var human = newHumanParser()

func newHumanParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseHuman accepts either a canonical key or a natural-language phrase such
// as "tomorrow" or "next friday", resolved relative to now.
func ParseHuman(s string, now time.Time) (Key, error) {
	s = strings.TrimSpace(s)
	if k, err := Parse(s); err == nil {
		return k, nil
	}

	r, err := human.Parse(s, now)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}

	return FromTime(r.Time), nil
}
