package cli

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/ir"
)

func TestJournal_Lifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	out, err := execute(t, "journal", "create", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "created replica alice\n", out)

	_, err = execute(t, "journal", "create", "bob", "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "journal", "append", "alice", "f1", "f2", "f1", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "appended 2 of 3 fact(s) to alice\n", out)

	_, err = execute(t, "journal", "append", "bob", "f3", "f2", "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "journal", "merge", "alice", "bob", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "f1 f2 f3\n", out)

	out, err = execute(t, "journal", "show", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\t3 fact(s)\nbob\t2 fact(s)\n", out)

	out, err = execute(t, "journal", "locate", "f3", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\nbob\n", out)
}

func TestJournal_PayloadFacts(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	_, err := execute(t, "journal", "create", "r", "--db", db)
	require.NoError(t, err)

	_, err = execute(t, "journal", "append", "r", "--payload", `{"kind":"grant","n":1}`, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "journal", "show", "r", "--db", db, "--format", "json")
	require.NoError(t, err)

	var j ir.Journal
	decodeResponse(t, out, &j)
	require.Len(t, j, 1)

	want := ir.MustFactIDFor(ir.IRObject{"kind": ir.IRString("grant"), "n": ir.IRInt(1)})
	assert.Equal(t, want, j[0].ID)
	assert.Equal(t, ir.IRString("grant"), j[0].Payload["kind"])
}

func TestJournal_CreateGeneratesID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	out, err := execute(t, "journal", "create", "--db", db, "--format", "json")
	require.NoError(t, err)

	var data map[string]string
	decodeResponse(t, out, &data)
	assert.Len(t, data["replica"], 36)
}

func TestJournal_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	_, err := execute(t, "journal", "show", "ghost", "--db", db)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "journal", "create", "dup", "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "journal", "create", "dup", "--db", db)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "journal", "append", "dup", "--db", db)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "journal", "append", "dup", "--payload", "[1]", "--db", db)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJournal_Delete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	for _, name := range []string{"alice", "bob"} {
		_, err := execute(t, "journal", "create", name, "--db", db)
		require.NoError(t, err)
		_, err = execute(t, "journal", "append", name, "shared", "--db", db)
		require.NoError(t, err)
	}

	out, err := execute(t, "journal", "delete", "bob", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "deleted replica bob\n", out)

	out, err = execute(t, "journal", "locate", "shared", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)

	_, err = execute(t, "journal", "delete", "bob", "--db", db)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJournal_ShowReportsUnrenderablePayload(t *testing.T) {
	db := filepath.Join(t.TempDir(), "replicas.db")

	_, err := execute(t, "journal", "create", "r", "--db", db)
	require.NoError(t, err)

	// Keys that collide after NFC normalization have no canonical form.
	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO facts (replica_id, position, fact_id, payload) VALUES (?, 0, 'bad', ?)`,
		"r", "{\"\u00e9\":1,\"e\u0301\":2}")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, err := execute(t, "journal", "show", "r", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, out)
}
