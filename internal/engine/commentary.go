package engine

import (
	"fmt"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// GenerateCommentary builds the deterministic commentary line for a
// delivery. The text is a display convenience; the type taxonomy is part
// of the contract consumers rely on.
func GenerateCommentary(d models.Delivery, striker string, overs string) (string, models.CommentaryType) {
	var text string
	var ctype models.CommentaryType

	switch {
	case d.IsWicket:
		text = fmt.Sprintf("%s is OUT! Bowled by %s.", striker, d.Bowler)
		ctype = models.CommentaryWicket
	case d.Extra == models.ExtraWide:
		text = fmt.Sprintf("Wide ball by %s. +1 extra run", d.Bowler)
		ctype = models.CommentaryExtra
	case d.Extra == models.ExtraNoBall:
		text = fmt.Sprintf("No-ball by %s. +1 extra run", d.Bowler)
		ctype = models.CommentaryExtra
	case d.Extra == models.ExtraBye || d.Extra == models.ExtraLegBye:
		text = fmt.Sprintf("%d %s run%s taken", d.RunsOffBat, d.Extra, plural(d.RunsOffBat))
		ctype = models.CommentaryExtra
	case d.RunsOffBat == 6:
		text = fmt.Sprintf("%s hits a SIX off %s!", striker, d.Bowler)
		ctype = models.CommentarySix
	case d.RunsOffBat == 4:
		text = fmt.Sprintf("%s hits a FOUR off %s!", striker, d.Bowler)
		ctype = models.CommentaryFour
	case d.RunsOffBat > 0:
		text = fmt.Sprintf("%s scores %d run%s off %s", striker, d.RunsOffBat, plural(d.RunsOffBat), d.Bowler)
		ctype = models.CommentaryNormal
	default:
		text = fmt.Sprintf("Dot ball by %s", d.Bowler)
		ctype = models.CommentaryDot
	}

	text += fmt.Sprintf(" (Over %s)", overs)

	// Scorer free-text is prepended, never replaces the generated line
	if d.Commentary != "" {
		text = d.Commentary + " — " + text
	}
	return text, ctype
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
