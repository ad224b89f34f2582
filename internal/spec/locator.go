package spec

import "regexp"

// Kind tells how a spec location is retrieved.
type Kind int

const (
	// Local locations are read from the filesystem.
	Local Kind = iota
	// Remote locations are fetched over the network.
	Remote
)

func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

var urlRe = regexp.MustCompile(`\b(https?|ftp|file)://[-A-Za-z0-9+&@#/%?=~_|!:,.;]*[-A-Za-z0-9+&@#/%=~_|]`)

// Classify reports whether input is a URL with an http, https, ftp or file
// scheme. Everything else is treated as a local path.
func Classify(input string) Kind {
	if urlRe.MatchString(input) {
		return Remote
	}
	return Local
}
