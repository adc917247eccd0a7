package feed

import (
	"fmt"
	"io"
	"strconv"
)

// RenderText writes a plain listing of s, one block per card.
func RenderText(w io.Writer, s State) error {
	if s.Kind != KindPopulated {
		_, err := fmt.Fprintln(w, s.Message)
		return err
	}

	for i, card := range s.Cards {
		if _, err := fmt.Fprintf(w, "%d. %s [%s]\n   %s\n", i+1, card.Name, card.Kind, card.Address); err != nil {
			return err
		}
		if card.Action != nil {
			if _, err := fmt.Fprintf(w, "   %s,%s\n",
				strconv.FormatFloat(card.Action.Lat, 'f', -1, 64),
				strconv.FormatFloat(card.Action.Lon, 'f', -1, 64)); err != nil {
				return err
			}
		}
	}
	return nil
}
