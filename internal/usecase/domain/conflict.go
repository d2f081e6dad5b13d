package domain

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"branch-content-review/internal/entities"
)

// Git-style conflict markers, anchored at line start. Marker lines carry at
// least seven marker characters; the separator line is exactly "=======".
var (
	conflictStart     = regexp.MustCompile(`^<{7}`)
	conflictSeparator = regexp.MustCompile(`^={7}$`)
	conflictEnd       = regexp.MustCompile(`^>{7}`)
)

// IsConflictResolved scans body line by line for leftover conflict markers.
// IsConflict is true while any marker line remains.
func (u *Usecase) IsConflictResolved(_ context.Context, filename, body string) (entities.ConflictCheck, error) {
	check := entities.ConflictCheck{Filename: filename}

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if conflictStart.MatchString(line) || conflictSeparator.MatchString(line) || conflictEnd.MatchString(line) {
			check.IsConflict = true
			return check, nil
		}
	}
	if err := sc.Err(); err != nil {
		return entities.ConflictCheck{}, err
	}
	return check, nil
}
