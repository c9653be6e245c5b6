package output

import (
	"context"
	"fmt"
	"time"
)

func StatusBar(ctx context.Context, refreshRate time.Duration, printF func()) {
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			printF()
		case <-ctx.Done():
			return
		}
	}
}

func PrettyParseStatus(events, distinct uint64, rate uint64) string {
	return fmt.Sprintf("%-24s %-24s %-20s",
		fmt.Sprintf("Events parsed: %d", events),
		fmt.Sprintf("Distinct stacks: %d", distinct),
		fmt.Sprintf("Events/s: %d", rate),
	)
}
