package generator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/typegen/pkg/config"
	"github.com/blimu-dev/typegen/pkg/schema"
)

func fixtureConfig(targets ...config.Target) *config.Config {
	cfg := config.Default()
	cfg.Spec = fixturePath
	cfg.Targets = targets
	return cfg
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Equal(t, []string{"go", "php", "typescript"}, registry.GetAvailableTypes())

	target, err := registry.New(config.Target{Type: config.TypePHP})
	require.NoError(t, err)
	assert.Equal(t, config.TypePHP, target.GetType())

	_, err = registry.New(config.Target{Type: "cobol"})
	assert.Error(t, err)
}

func TestGeneratePHP(t *testing.T) {
	out := t.TempDir()
	report, err := NewService().GenerateFromConfig(context.Background(), fixtureConfig(config.Target{Type: config.TypePHP, OutDir: out}), "")

	// Broken.Thing fails classification; everything else is still written.
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnknownSchemaType))
	assert.Contains(t, err.Error(), "Broken.Thing")

	require.NotNil(t, report)
	require.Len(t, report.Targets, 1)
	tr := report.Targets[0]
	assert.Equal(t, "php", tr.Target)
	assert.Equal(t, 7, tr.Models)
	assert.Equal(t, 2, tr.Services)
	assert.Equal(t, 11, tr.Written)
	require.Len(t, tr.Failures, 1)
	require.Len(t, tr.Skipped, 1)
	assert.Equal(t, "Common.Alias", tr.Skipped[0].Identifier)
	assert.Equal(t, tr.Skipped, report.Diagnostics())

	for _, rel := range []string{
		"BungieMembershipType.php",
		"User/GeneralUser.php",
		"User/UserMembershipData.php",
		"Destiny/Config/DestinyManifest.php",
		"Destiny/Requests/Actions/DestinyItemStateRequest.php",
		"Destiny/DestinyGameVersions.php",
		"Destiny/HistoricalStats/DestinyHistoricalStatsValues.php",
		"User.php",
		"Destiny2.php",
		"Service.php",
		"Requester.php",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}
	for _, rel := range []string{"Common/Ids.php", "Common/Alias.php", "Destiny/Components/ItemMap.php", "Broken/Thing.php"} {
		assert.NoFileExists(t, filepath.Join(out, rel))
	}

	content, err := os.ReadFile(filepath.Join(out, "User", "GeneralUser.php"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "namespace Bungie\\User;")
	assert.Contains(t, string(content), "public ?string $displayName,")
}

func TestGenerateFailFast(t *testing.T) {
	out := t.TempDir()
	cfg := fixtureConfig(config.Target{Type: config.TypePHP, OutDir: out})
	cfg.FailFast = true

	report, err := NewService().GenerateFromConfig(context.Background(), cfg, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnknownSchemaType))
	require.Len(t, report.Targets, 1)
	assert.Equal(t, 0, report.Targets[0].Written)
	assert.NoFileExists(t, filepath.Join(out, "Service.php"))
}

func TestGenerateAllTargets(t *testing.T) {
	php, ts, golang := t.TempDir(), t.TempDir(), t.TempDir()
	cfg := fixtureConfig(
		config.Target{Type: config.TypePHP, OutDir: php},
		config.Target{Type: config.TypeTypeScript, OutDir: ts},
		config.Target{Type: config.TypeGo, OutDir: golang, PackageName: "bungie"},
	)

	report, err := NewService().GenerateFromConfig(context.Background(), cfg, "")
	require.Error(t, err)
	require.Len(t, report.Targets, 3)
	for _, tr := range report.Targets {
		assert.Equal(t, 7, tr.Models, tr.Target)
		assert.Equal(t, 2, tr.Services, tr.Target)
		assert.Len(t, tr.Failures, 1, tr.Target)
	}
	assert.Len(t, report.Diagnostics(), 3)

	assert.FileExists(t, filepath.Join(ts, "User", "GeneralUser.ts"))
	assert.FileExists(t, filepath.Join(ts, "Destiny2Service.ts"))
	assert.FileExists(t, filepath.Join(ts, "Service.ts"))

	assert.FileExists(t, filepath.Join(golang, "user_general_user.go"))
	assert.FileExists(t, filepath.Join(golang, "destiny2_service.go"))
	assert.FileExists(t, filepath.Join(golang, "requester.go"))

	content, err := os.ReadFile(filepath.Join(golang, "user_user_membership_data.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "package bungie")
	assert.Contains(t, string(content), "[]UserGeneralUser")
}

func TestGenerateOnlyTarget(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	cfg := fixtureConfig(
		config.Target{Type: config.TypePHP, Name: "first", OutDir: first},
		config.Target{Type: config.TypePHP, Name: "second", OutDir: second},
	)

	report, _ := NewService().GenerateFromConfig(context.Background(), cfg, "second")
	require.Len(t, report.Targets, 1)
	assert.Equal(t, "second", report.Targets[0].Target)
	assert.NoFileExists(t, filepath.Join(first, "Service.php"))
	assert.FileExists(t, filepath.Join(second, "Service.php"))

	_, err := NewService().GenerateFromConfig(context.Background(), cfg, "third")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no target named "third"`)
}

func TestGenerateHonoursExcludes(t *testing.T) {
	out := t.TempDir()
	report, _ := NewService().GenerateFromConfig(context.Background(), fixtureConfig(config.Target{
		Type:    config.TypePHP,
		OutDir:  out,
		Exclude: []string{"Destiny/", "Requester.php"},
	}), "")

	require.Len(t, report.Targets, 1)
	assert.Equal(t, 6, report.Targets[0].Written)
	assert.NoFileExists(t, filepath.Join(out, "Requester.php"))
	assert.NoFileExists(t, filepath.Join(out, "Destiny", "DestinyGameVersions.php"))
	assert.FileExists(t, filepath.Join(out, "User", "GeneralUser.php"))
}

func TestGenerateTagFilters(t *testing.T) {
	out := t.TempDir()
	report, _ := NewService().GenerateFromConfig(context.Background(), fixtureConfig(config.Target{
		Type:        config.TypePHP,
		OutDir:      out,
		ExcludeTags: []string{"^Destiny"},
	}), "")

	require.Len(t, report.Targets, 1)
	assert.Equal(t, 1, report.Targets[0].Services)
	assert.FileExists(t, filepath.Join(out, "User.php"))
	assert.NoFileExists(t, filepath.Join(out, "Destiny2.php"))
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	for _, out := range []string{first, second} {
		cfg := fixtureConfig(config.Target{Type: config.TypeTypeScript, OutDir: out})
		cfg.Concurrency = 8
		_, _ = NewService().GenerateFromConfig(context.Background(), cfg, "")
	}

	err := filepath.WalkDir(first, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(first, path)
		require.NoError(t, err)
		a, err := os.ReadFile(path)
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, string(a), string(b), rel)
		return nil
	})
	require.NoError(t, err)
}

func TestGenerateRunsCommands(t *testing.T) {
	out := t.TempDir()
	_, _ = NewService().GenerateFromConfig(context.Background(), fixtureConfig(config.Target{
		Type:        config.TypePHP,
		OutDir:      out,
		PreCommand:  []string{"sh", "-c", "touch pre.txt"},
		PostCommand: []string{"sh", "-c", "test -f Service.php && touch post.txt"},
	}), "")

	assert.FileExists(t, filepath.Join(out, "pre.txt"))
	assert.FileExists(t, filepath.Join(out, "post.txt"))
}

func TestGenerateFailingPreCommand(t *testing.T) {
	out := t.TempDir()
	_, err := NewService().GenerateFromConfig(context.Background(), fixtureConfig(config.Target{
		Type:       config.TypePHP,
		OutDir:     out,
		PreCommand: []string{"sh", "-c", "exit 3"},
	}), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pre-generation commands failed")
	assert.NoFileExists(t, filepath.Join(out, "Service.php"))
}

func TestGenerateLogsSkipsAndFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _ = NewService().WithLogger(logger).GenerateFromConfig(context.Background(), fixtureConfig(config.Target{Type: config.TypePHP, OutDir: t.TempDir()}), "")

	logs := buf.String()
	assert.Contains(t, logs, "schema skipped")
	assert.Contains(t, logs, "identifier=Common.Alias")
	assert.Contains(t, logs, "schema failed")
	assert.Contains(t, logs, "msg=generated")
}

func TestGenerateFallbackOptions(t *testing.T) {
	out := t.TempDir()
	report, err := NewService().Generate(context.Background(), GenerateOptions{Fallback: FallbackOptions{
		Spec:   fixturePath,
		Type:   config.TypeTypeScript,
		OutDir: out,
		Vendor: "Acme",
	}})
	require.Error(t, err)
	require.Len(t, report.Targets, 1)

	content, err := os.ReadFile(filepath.Join(out, "User", "GeneralUser.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "namespace Acme.User {")

	_, err = NewService().Generate(context.Background(), GenerateOptions{})
	assert.Error(t, err)
}

func TestGenerateMissingSpec(t *testing.T) {
	cfg := fixtureConfig(config.Target{Type: config.TypePHP, OutDir: t.TempDir()})
	cfg.Spec = filepath.Join(t.TempDir(), "missing.yaml")
	report, err := NewService().GenerateFromConfig(context.Background(), cfg, "")
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestClassify(t *testing.T) {
	doc := loadFixture(t)
	results := Classify(doc, "", phpProjector().Dialect())
	require.Len(t, results, 11)

	byID := make(map[string]Classification)
	for _, c := range results {
		byID[c.Identifier] = c
	}
	assert.Equal(t, "BungieMembershipType", results[0].Identifier)
	assert.Equal(t, schema.Enum, byID["BungieMembershipType"].Category)
	assert.Equal(t, schema.ObjectLiteral, byID["User.GeneralUser"].Category)
	assert.Equal(t, "array{membershipId: int, displayName: string}", byID["User.GeneralUser"].Type)
	assert.Equal(t, schema.DictionaryObject, byID["Destiny.Components.ItemMap"].Category)
	assert.Equal(t, `\Bungie\User\GeneralUser[]`, byID["Destiny.Components.ItemMap"].DocType)
	assert.Equal(t, schema.ArrayObject, byID["Destiny.HistoricalStats.DestinyHistoricalStatsValues"].Category)
	assert.Equal(t, schema.Array, byID["Common.Ids"].Category)
	assert.Equal(t, "int[]", byID["Common.Ids"].DocType)
	assert.True(t, errors.Is(byID["Broken.Thing"].Err, schema.ErrUnknownSchemaType))
}
