package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"jobsift/internal/model"
)

// Key is the normalized identity tuple of a posting. Two postings with equal
// Keys are the same posting, regardless of description or source metadata.
type Key struct {
	Title    string
	Company  string
	Location string
	URL      string
}

// Normalize derives the identity Key from a posting: lowercased, with runs of
// whitespace collapsed to a single space and leading/trailing whitespace
// stripped. An absent URL normalizes to the empty string so postings without
// links stay trackable by title/company/location alone.
func Normalize(p model.Posting) Key {
	return Key{
		Title:    canonical(p.Title),
		Company:  canonical(p.Company),
		Location: canonical(p.Location),
		URL:      canonical(p.URL),
	}
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Fingerprint computes the stable identity digest for a Key: sha256 over the
// fields, each length-prefixed so field boundaries are unambiguous no matter
// what characters the fields contain, hex encoded. Identical Keys always
// yield identical digests across runs and restarts. Description text, scrape
// time, and site name never enter the digest: they vary between observations
// of the same posting.
func Fingerprint(k Key) string {
	h := sha256.New()
	var prefix [8]byte
	for _, field := range []string{k.Title, k.Company, k.Location, k.URL} {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(field)))
		h.Write(prefix[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
