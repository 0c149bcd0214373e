package patch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/webui-installer/internal/shell"
	"github.com/conn-castle/webui-installer/internal/testutil"
)

const (
	legacyGit   = "https://github.com/Stability-AI/stablediffusion.git"
	legacyBare  = "https://github.com/Stability-AI/stablediffusion"
	replacement = "https://github.com/w-e-w/stablediffusion.git"
)

var variants = []string{legacyGit, legacyBare}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}

func countMatches(t *testing.T, root string) []string {
	t.Helper()
	var hits []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.Contains(d.Name(), backupInfix) {
			return nil
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		if bytes.Contains(data, []byte(legacyBare)) {
			hits = append(hits, path)
		}
		return nil
	})
	require.NoError(t, err)
	return hits
}

func TestRunPatchesEveryMatchOnceWithBackup(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	launch := "repo = \"" + legacyGit + "\"\n"
	both := "a=" + legacyGit + "\nb=" + legacyBare + "\nc=" + legacyGit + "\n"
	writeTree(t, root, map[string]string{
		"modules/launch_utils.py": launch,
		"modules/both.txt":        both,
		"README.md":               "no urls here\n",
		".git/config":             "url = " + legacyGit + "\n",
		"venv/lib/site.py":        legacyGit,
	})
	writeTree(t, root, map[string]string{"repositories/stable-diffusion-stability-ai/setup.py": legacyGit})
	require.NoError(t, os.WriteFile(filepath.Join(root, "weights.dat"), append([]byte(legacyGit), 0, 1, 2), 0o644))

	var out bytes.Buffer
	report, err := Run(Options{
		Root:        root,
		Variants:    variants,
		Replacement: replacement,
		VendoredDir: "repositories/stable-diffusion-stability-ai",
		Scan:        DefaultScanOptions(),
		Now:         fixedNow,
		Out:         &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Patched(), "the vendored copy is patched before it is removed")
	assert.True(t, report.StaleRemoved)

	data, err := os.ReadFile(filepath.Join(root, "modules/both.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a="+replacement+"\nb="+replacement+"\nc="+replacement+"\n", string(data))

	backup, err := os.ReadFile(filepath.Join(root, "modules/both.txt.bak.20240506_070809"))
	require.NoError(t, err)
	assert.Equal(t, both, string(backup))
	backup, err = os.ReadFile(filepath.Join(root, "modules/launch_utils.py.bak.20240506_070809"))
	require.NoError(t, err)
	assert.Equal(t, launch, string(backup))

	gitConfig, err := os.ReadFile(filepath.Join(root, ".git/config"))
	require.NoError(t, err)
	assert.Contains(t, string(gitConfig), legacyGit, "version-control metadata is never rewritten")
	venv, err := os.ReadFile(filepath.Join(root, "venv/lib/site.py"))
	require.NoError(t, err)
	assert.Equal(t, legacyGit, string(venv))
	bin, err := os.ReadFile(filepath.Join(root, "weights.dat"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bin, []byte(legacyGit)), "binary files are skipped")

	_, err = os.Stat(filepath.Join(root, "repositories/stable-diffusion-stability-ai"))
	assert.True(t, os.IsNotExist(err))

	hits := countMatches(t, root)
	assert.Equal(t, []string{filepath.Join(root, "venv/lib/site.py"), filepath.Join(root, "weights.dat")}, hits)
}

func TestRunTwiceIsNoOp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"launch.py": "x = '" + legacyBare + "'\n"})
	opts := Options{Root: root, Variants: variants, Replacement: replacement, Scan: DefaultScanOptions(), Now: fixedNow}

	first, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Patched())

	opts.Now = func() time.Time { return fixedNow().Add(time.Hour) }
	var out bytes.Buffer
	opts.Out = &out
	second, err := Run(opts)
	require.NoError(t, err)
	assert.Empty(t, second.Edits)
	assert.Equal(t, 0, second.Patched())
	assert.Contains(t, out.String(), "nothing to patch")

	backups, err := filepath.Glob(filepath.Join(root, "launch.py"+backupInfix+"*"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestRunNoMatchesIsNotAnError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "print('hi')\n"})
	report, err := Run(Options{Root: root, Variants: variants, Replacement: replacement, VendoredDir: "repositories/missing"})
	require.NoError(t, err)
	assert.Empty(t, report.Edits)
	assert.False(t, report.StaleRemoved)
}

func TestRunDryRunLeavesTreeUntouched(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":              legacyGit,
		"vendored/keep.txt": "x",
	})
	report, err := Run(Options{Root: root, Variants: variants, Replacement: replacement, VendoredDir: "vendored", DryRun: true, Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, report.Edits, 1)

	data, err := os.ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, legacyGit, string(data))
	_, err = os.Stat(filepath.Join(root, "vendored/keep.txt"))
	require.NoError(t, err)

	preview := Preview(report.Edits, 0)
	assert.Contains(t, preview, "-"+legacyGit)
	assert.Contains(t, preview, "+"+replacement)
}

func TestRunRejectsVendoredDirOutsideRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	_, err := Run(Options{Root: root, Variants: variants, Replacement: replacement, VendoredDir: "../escape"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside")
}

func TestScanValidatesInputs(t *testing.T) {
	t.Parallel()
	_, err := Scan("", variants, ScanOptions{})
	require.Error(t, err)
	_, err = Scan(t.TempDir(), nil, ScanOptions{})
	require.Error(t, err)
	_, err = Scan(t.TempDir(), variants, ScanOptions{ExcludeGlobs: []string{"[unclosed"}})
	require.Error(t, err)
}

func TestScanDeduplicatesFilesMatchingBothVariants(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"both.txt": legacyGit + " " + legacyBare})
	snap, err := Scan(root, variants, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"both.txt"}, snap.Paths())
}

func TestPlanIsPureAndReplacesLongestVariantFirst(t *testing.T) {
	t.Parallel()
	snap := Snapshot{
		"b.txt": []byte(legacyGit),
		"a.txt": []byte(legacyBare + "/tree/main"),
		"c.txt": []byte("clean"),
	}
	// Shortest variant listed first on purpose.
	edits := Plan(snap, []string{legacyBare, legacyGit}, replacement, "stamp")
	require.Len(t, edits, 2)
	assert.Equal(t, "a.txt", edits[0].Path)
	assert.Equal(t, replacement+"/tree/main", string(edits[0].Updated))
	assert.Equal(t, "b.txt", edits[1].Path)
	assert.Equal(t, replacement, string(edits[1].Updated))
	assert.Equal(t, "b.txt.bak.stamp", edits[1].Backup)
	assert.Equal(t, legacyGit, string(snap["b.txt"]), "snapshot is not mutated")
}

func TestApplySkipsFilesAlreadyPatched(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": legacyGit})
	snap, err := Scan(root, variants, DefaultScanOptions())
	require.NoError(t, err)
	edits := Plan(snap, variants, replacement, "s1")

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte(replacement), 0o644))
	var out bytes.Buffer
	outcomes, err := Apply(root, edits, &out)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Patched)
	assert.Contains(t, out.String(), "skipped a.txt")
	_, err = os.Stat(filepath.Join(root, "a.txt.bak.s1"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyUsesCurrentContentWhenFileChanged(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": legacyGit})
	snap, err := Scan(root, variants, DefaultScanOptions())
	require.NoError(t, err)
	edits := Plan(snap, variants, replacement, "s1")

	changed := "edited " + legacyBare + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte(changed), 0o600))
	outcomes, err := Apply(root, edits, nil)
	require.NoError(t, err)
	assert.True(t, outcomes[0].Patched)

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "edited "+replacement+"\n", string(data))
	backup, err := os.ReadFile(filepath.Join(root, "a.txt.bak.s1"))
	require.NoError(t, err)
	assert.Equal(t, changed, string(backup))

	info, err := os.Stat(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestApplyNeverOverwritesExistingBackup(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":        legacyGit,
		"a.txt.bak.s1": "older backup",
	})
	edits := Plan(Snapshot{"a.txt": []byte(legacyGit)}, variants, replacement, "s1")
	outcomes, err := Apply(root, edits, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.txt.bak.s1.1", outcomes[0].Backup)

	older, err := os.ReadFile(filepath.Join(root, "a.txt.bak.s1"))
	require.NoError(t, err)
	assert.Equal(t, "older backup", string(older))
}

func TestHealRemote(t *testing.T) {
	t.Parallel()
	runner := &testutil.FakeRunner{Handle: func(cmd shell.Command) (string, error) {
		if strings.Contains(cmd.String(), "get-url") {
			return legacyBare + "\n", nil
		}
		return "", nil
	}}
	var out bytes.Buffer
	changed, err := HealRemote(context.Background(), runner, "/app/repositories/x", variants, replacement, &out)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{
		"git -C /app/repositories/x remote get-url origin",
		"git -C /app/repositories/x remote set-url origin " + replacement,
	}, runner.Calls())
	assert.Contains(t, out.String(), "Repairing stale remote")
}

func TestHealRemoteLeavesCurrentRemoteAlone(t *testing.T) {
	t.Parallel()
	runner := &testutil.FakeRunner{Handle: func(shell.Command) (string, error) { return replacement + "\n", nil }}
	changed, err := HealRemote(context.Background(), runner, "/d", variants, replacement, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, runner.Calls(), 1)
}

func TestHealRemoteReadError(t *testing.T) {
	t.Parallel()
	runner := &testutil.FakeRunner{Handle: func(shell.Command) (string, error) { return "", errors.New("not a git repo") }}
	_, err := HealRemote(context.Background(), runner, "/d", variants, replacement, nil)
	require.Error(t, err)
}
