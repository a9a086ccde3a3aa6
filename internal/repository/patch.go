package repository

import (
	"strconv"
	"strings"

	"todo_app/internal/domain"
)

// buildTodoPatch assembles the SET clause for the fields present in p.
// placeholder renders the n-th (1-based) bind parameter for the driver.
func buildTodoPatch(p domain.TodoPatch, placeholder func(n int) string) (string, []any) {
	var (
		sets []string
		args []any
	)

	if p.Title != nil {
		args = append(args, *p.Title)
		sets = append(sets, "title = "+placeholder(len(args)))
	}
	if p.Completed != nil {
		args = append(args, *p.Completed)
		sets = append(sets, "completed = "+placeholder(len(args)))
	}

	return strings.Join(sets, ", "), args
}

func dollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func questionPlaceholder(int) string {
	return "?"
}
