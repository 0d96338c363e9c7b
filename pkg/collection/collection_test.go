package collection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	email  string
	status string
}

var rows = []row{
	{"a@gmail.com", "Pending"},
	{"b@ceat.com", "Approved"},
	{"a@gmail.com", "Rejected"},
	{"", "Pending"},
}

func TestPluckFilterUnique(t *testing.T) {
	emails := Unique(Filter(Pluck(rows, func(r row) string { return r.email }), func(s string) bool { return s != "" }))
	assert.Equal(t, []string{"a@gmail.com", "b@ceat.com"}, emails)
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"PENDING", "APPROVED"}, Map(rows[:2], func(r row) string { return strings.ToUpper(r.status) }))
	assert.Empty(t, Map([]row{}, func(r row) int { return 0 }))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(rows, func(r row) bool { return r.email == "b@ceat.com" }))
	assert.False(t, Contains(rows, func(r row) bool { return r.email == "c@ceat.com" }))
}

func TestGroupBy(t *testing.T) {
	g := GroupBy(rows, func(r row) string { return r.status })
	assert.Len(t, g["Pending"], 2)
	assert.Len(t, g["Approved"], 1)
	assert.Equal(t, "a@gmail.com", g["Pending"][0].email)
}
