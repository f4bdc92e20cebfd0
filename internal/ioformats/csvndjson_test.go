package ioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-inclusion-checker/internal/models"
)

var defaults = models.ScanRequest{Scope: models.ScopeNational, Audience: models.AudienceBusinesses}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestReadRequestsCSV(t *testing.T) {
	path := writeFile(t, "in.csv", "Domain,Scope,Audience,City\n"+
		"sunrisebakery.com,local,Consumers,\"Austin, TX\"\n"+
		"acme.io,,,\n"+
		",local,consumers,Denver\n")

	reqs, err := ReadRequests(path, defaults)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, models.ScanRequest{
		Domain: "sunrisebakery.com", Scope: models.ScopeLocal, Audience: models.AudienceConsumers, City: "Austin, TX",
	}, reqs[0])
	assert.Equal(t, models.ScanRequest{
		Domain: "acme.io", Scope: models.ScopeNational, Audience: models.AudienceBusinesses,
	}, reqs[1])
}

func TestReadRequestsCSVAcceptsURLColumn(t *testing.T) {
	reqs, err := DecodeRequests(strings.NewReader("url\nhttps://a.com\n"), FormatCSV, defaults)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://a.com", reqs[0].Domain)

	_, err = DecodeRequests(strings.NewReader("host\na.com\n"), FormatCSV, defaults)
	assert.Error(t, err)
}

func TestReadRequestsNDJSON(t *testing.T) {
	path := writeFile(t, "in.jsonl", `{"domain":"a.com","scope":"local","city":"Austin","audience":"niche"}

b.com
{"url":"https://c.com"}
`)
	reqs, err := ReadRequests(path, defaults)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, models.ScopeLocal, reqs[0].Scope)
	assert.Equal(t, models.AudienceNiche, reqs[0].Audience)
	assert.Equal(t, "b.com", reqs[1].Domain)
	assert.Equal(t, models.AudienceBusinesses, reqs[1].Audience)
	assert.Equal(t, "https://c.com", reqs[2].Domain)
}

func TestReadRequestsUnknownExtension(t *testing.T) {
	reqs, err := ReadRequests(writeFile(t, "in.txt", "a.com\nb.com\n"), defaults)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	_, err = ReadRequests(writeFile(t, "empty.ndjson", "\n\n"), defaults)
	assert.Error(t, err)
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, []models.PublicQuery{{ID: "a", Text: "x"}, {ID: "b"}}))
	assert.Equal(t, "{\"id\":\"a\",\"text\":\"x\",\"supported\":false}\n{\"id\":\"b\",\"text\":\"\",\"supported\":false}\n", buf.String())
}

func TestLineFor(t *testing.T) {
	l := LineFor("bad", models.ScanRecord{}, assert.AnError)
	assert.Equal(t, Line{Domain: "bad", Error: assert.AnError.Error()}, l)

	l = LineFor("a.com", models.ScanRecord{Domain: "a.com", Status: models.StatusFailed, Error: "blocked"}, nil)
	assert.Nil(t, l.Result)
	assert.Equal(t, "blocked", l.Error)

	l = LineFor("A.com", models.ScanRecord{Domain: "a.com", Status: models.StatusComplete, ReadinessScore: 42}, nil)
	require.NotNil(t, l.Result)
	assert.Equal(t, "a.com", l.Domain)
	assert.Equal(t, 42, l.Result.ReadinessScore)
	assert.Empty(t, l.Error)
}
