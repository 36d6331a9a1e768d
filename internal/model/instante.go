package model

import (
	"bytes"
	"fmt"
	"time"
)

// Instante is a timestamp as emitted by the agent. The agent serializes some
// DateTime values without an offset, which time.Time rejects, so several
// layouts are accepted on decode. Encoding is always RFC 3339.
type Instante struct {
	time.Time
}

var layoutsInstante = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func NovoInstante(t time.Time) Instante { return Instante{Time: t} }

func (i *Instante) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		i.Time = time.Time{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	for _, layout := range layoutsInstante {
		if t, err := time.Parse(layout, s); err == nil {
			i.Time = t
			return nil
		}
	}
	return fmt.Errorf("instante inválido: %q", s)
}

func (i Instante) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + i.Format(time.RFC3339) + `"`), nil
}
