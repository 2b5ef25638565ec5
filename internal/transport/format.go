package transport

import (
	"strings"

	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/dustin/go-humanize"
)

// Site describes the deployment the notifications point back to.
type Site struct {
	Name    string
	RootURL string
}

func lastPing(chk *check.Check) string {
	if chk.LastPing == nil {
		return "Never"
	}
	return humanize.Time(*chk.LastPing)
}

func statusWord(chk *check.Check) string {
	return strings.ToUpper(string(chk.Status))
}

func (s Site) checkURL(chk *check.Check) string {
	return strings.TrimRight(s.RootURL, "/") + "/checks/" + chk.Code.String() + "/details/"
}
