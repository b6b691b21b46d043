package budget

import (
	"fmt"
	"time"
)

// SynthesizeNumber derives the display number of a budget from its revision
// and the send time, e.g. "V2-0901.1530".
//
// The token is display-only and deliberately not a uniqueness key: two
// budgets sent within the same minute collide. Anything that needs a real
// identity uses the budget's UUID; anything that needs a collision-free
// sequence goes through the sequence allocator instead.
func SynthesizeNumber(version int, at time.Time) string {
	return fmt.Sprintf("V%d-%s", version, at.Format("0102.1504"))
}
