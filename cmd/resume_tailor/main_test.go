package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/auth"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/types"
)

const agentAnswer = `{
	"name": "Ada Lovelace",
	"professionalSummary": "Backend engineer who ships Go services.",
	"experience": [{"id":"exp-1","company":"Engines Ltd","position":"Engineer","startDate":"2020","bullets":["Built Go services"]}],
	"technicalSkills": ["Go"],
	"summary": {"keyImprovements": ["Added keywords"], "keywordsAdded": ["Kubernetes"], "warnings": []},
	"matchScore": 77
}`

func writeFile(t *testing.T, name string, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var data []byte
	switch val := v.(type) {
	case string:
		data = []byte(val)
	default:
		var err error
		data, err = json.Marshal(val)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		for _, cmd := range rootCmd.Commands() {
			resetFlags(cmd.Flags())
		}
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores defaults so commands can run more than once per process.
func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, types.PhaseEvent("researching", 25)))

	frame := buf.String()
	assert.True(t, strings.HasPrefix(frame, "event: phase\ndata: {"))
	assert.True(t, strings.HasSuffix(frame, "}\n\n"))
	assert.Contains(t, frame, `"phase":"researching"`)
	assert.Contains(t, frame, `"progress":25`)
}

func TestReadProjects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"name":"Tailor"},{"name":"Merge"}]`, 2, false},
		{"wrapped", `{"projects":[{"name":"Tailor"}]}`, 1, false},
		{"empty wrapper", `{}`, 0, false},
		{"not json", `projects: none`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, err := readProjects(writeFile(t, "projects.json", tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, projects, tt.want)
		})
	}
}

func TestReadProjects_MissingFile(t *testing.T) {
	_, err := readProjects(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, "", map[string]int{"added": 2}))
	assert.Equal(t, "{\n  \"added\": 2\n}\n", buf.String())

	path := filepath.Join(t.TempDir(), "out.json")
	buf.Reset()
	require.NoError(t, writeJSON(&buf, path, map[string]int{"added": 2}))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":2}`, string(data))
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")
	userID := uuid.New()

	out, err := execute(t, "token", "--user", userID.String())
	require.NoError(t, err)

	cfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := auth.NewTokenService(cfg).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
}

func TestTokenCommand_InvalidUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")

	_, err := execute(t, "token", "--user", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestMigrateCommand_Print(t *testing.T) {
	out, err := execute(t, "migrate", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE")
}

func TestTailorCommand_InlineResume(t *testing.T) {
	var submitted agent.RunRequest
	agentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/runs" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&submitted)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"run-7","status":"succeeded","progress":["Reading the posting"],"answer":` + agentAnswer + `}`))
	}))
	defer agentSrv.Close()

	t.Setenv("AGENT_PROVIDER", "http")
	t.Setenv("AGENT_BASE_URL", agentSrv.URL)
	t.Setenv("LOG_LEVEL", "error")

	job := writeFile(t, "job.json", types.JobDescription{
		Title:    "Backend Engineer",
		Company:  "Acme",
		FullText: "We build Go services on Kubernetes.",
	})
	resume := writeFile(t, "resume.json", types.ProfileSnapshot{
		Contact:    types.ContactInfo{Name: "Ada Lovelace"},
		Experience: []types.ExperienceEntry{{ID: "exp-1", Company: "Engines Ltd", Position: "Engineer", Bullets: []string{"Built Go services"}}},
	})
	result := filepath.Join(t.TempDir(), "tailored.json")

	out, err := execute(t, "tailor", "--job", job, "--resume", resume, "--out", result)
	require.NoError(t, err)

	assert.Contains(t, out, "event: phase\n")
	assert.Contains(t, out, "event: thought\n")
	assert.Contains(t, out, "event: complete\n")
	assert.NotContains(t, out, "event: error\n")
	assert.NotEmpty(t, submitted.Instructions)

	data, err := os.ReadFile(result)
	require.NoError(t, err)
	var tailored types.TailoredResume
	require.NoError(t, json.Unmarshal(data, &tailored))
	assert.Equal(t, "Ada Lovelace", tailored.Contact.Name)
	assert.Len(t, tailored.Experience, 1)
	assert.Equal(t, 77, tailored.MatchScore)
}

func agentServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/runs" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"run-8","status":"succeeded","answer":` + answer + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTailorCommand_JobURL(t *testing.T) {
	posting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Platform Engineer</h1><div class="job-description"><p>Run Go services on Kubernetes.</p></div></body></html>`))
	}))
	defer posting.Close()

	t.Setenv("AGENT_PROVIDER", "http")
	t.Setenv("AGENT_BASE_URL", agentServer(t, agentAnswer).URL)
	t.Setenv("LOG_LEVEL", "error")

	resume := writeFile(t, "resume.json", types.ProfileSnapshot{
		Projects: []types.ProjectEntry{{ID: "p-1", Name: "Tailor", Bullets: []string{"Streams résumés"}}},
	})

	out, err := execute(t, "tailor", "--job-url", posting.URL+"/jobs/1", "--company", "Initech", "--resume", resume)
	require.NoError(t, err)
	assert.Contains(t, out, "event: complete\n")
}

func TestTailorCommand_RequiresOneJobSource(t *testing.T) {
	resume := writeFile(t, "resume.json", `{}`)
	_, err := execute(t, "tailor", "--resume", resume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job")
}

func TestParseCommand_Summary(t *testing.T) {
	t.Setenv("AGENT_PROVIDER", "http")
	t.Setenv("AGENT_BASE_URL", agentServer(t, `{"projects":[{"name":"Tailor","technologies":["Go","SSE"],"bullets":["Streams résumés"]}]}`).URL)
	t.Setenv("LOG_LEVEL", "error")

	in := writeFile(t, "resume.txt", "PROJECTS\nTailor - Go, SSE\n- Streams résumés")
	jsonOut := filepath.Join(t.TempDir(), "projects.json")

	out, err := execute(t, "parse", "--in", in, "--summary", "--out", jsonOut)
	require.NoError(t, err)
	assert.Contains(t, out, "PARSED PROJECTS")
	assert.Contains(t, out, "• Tailor")

	projects, err := readProjects(jsonOut)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, []string{"Go", "SSE"}, projects[0].Technologies)
}

func TestBuildAgents(t *testing.T) {
	logger := logging.Discard()

	t.Run("http provider shares one client", func(t *testing.T) {
		cfg := &config.Config{Agent: config.AgentConfig{Provider: config.ProviderHTTP, BaseURL: "http://agent.local"}}
		backends, err := buildAgents(context.Background(), cfg, logger)
		require.NoError(t, err)
		defer backends.Close()

		assert.IsType(t, &agent.HTTPClient{}, backends.tailor)
		assert.Same(t, backends.tailor, backends.merge)
		assert.NotEmpty(t, backends.tools)
	})

	t.Run("llm provider requires a key", func(t *testing.T) {
		cfg := &config.Config{Agent: config.AgentConfig{Provider: config.ProviderOpenAI}}
		_, err := buildAgents(context.Background(), cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AGENT_API_KEY")
	})
}
