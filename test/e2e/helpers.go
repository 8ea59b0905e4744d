//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/promptuary/promptuary/internal/api/handlers"
	"github.com/promptuary/promptuary/internal/guardrails"
	"github.com/promptuary/promptuary/internal/ratelimit"
	"github.com/promptuary/promptuary/internal/repository"
	"github.com/promptuary/promptuary/internal/server"
	"github.com/promptuary/promptuary/internal/service"
	"github.com/promptuary/promptuary/internal/storage"
	"github.com/promptuary/promptuary/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	BinaryDir    string
	LibraryID    string
	AuthToken    string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-exports",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Bootstrap creates a library and API key for testing. Key provisioning is
// an admin operation done through the service layer, not the HTTP API.
func (e *E2ETestEnv) Bootstrap() {
	authSvc := service.NewAuthService(
		repository.NewLibraryRepository(e.Pool),
		repository.NewAPIKeyRepository(e.Pool),
		&service.DefaultUUIDGenerator{},
		zap.NewNop(),
	)

	library, err := authSvc.CreateLibrary(e.Ctx, "E2E Test Library")
	if err != nil {
		e.T.Fatalf("failed to create library: %v", err)
	}
	e.LibraryID = library.ID

	token, err := authSvc.CreateAPIKey(e.Ctx, library.ID, "e2e-test-key")
	if err != nil {
		e.T.Fatalf("failed to create API key: %v", err)
	}
	e.AuthToken = token
}

// BuildBinaries builds the promptuary and promptuaryd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "promptuary-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "promptuaryd"), "./cmd/promptuaryd")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build promptuaryd: %v\n%s", err, out)
	}

	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "promptuary"), "./cmd/promptuary")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build promptuary: %v\n%s", err, out)
	}
}

// RunCLI runs the promptuary CLI command
func (e *E2ETestEnv) RunCLI(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "promptuary"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("PROMPTUARY_API_KEY=%s", e.AuthToken),
		fmt.Sprintf("PROMPTUARY_SERVER_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// RunCLIWithInput runs the promptuary CLI command with stdin input
func (e *E2ETestEnv) RunCLIWithInput(workDir string, input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "promptuary"), args...)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader([]byte(input))
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("PROMPTUARY_API_KEY=%s", e.AuthToken),
		fmt.Sprintf("PROMPTUARY_SERVER_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request against /api/v1
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request against /api/v1
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Put performs a PUT request against /api/v1
func (e *E2ETestEnv) Put(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("PUT", path, body, authToken)
}

// Delete performs a DELETE request against /api/v1
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + "/api/v1" + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// GetRaw performs a GET request against /api/v1 and returns the raw body.
// Used for endpoints that do not serve the JSON envelope, like theme CSS.
func (e *E2ETestEnv) GetRaw(path, authToken string) (int, []byte, error) {
	req, err := http.NewRequest("GET", e.ServerURL+"/api/v1"+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// startServer starts the HTTP server with the full handler stack. Assist
// runs in no-op mode since no model server is available in E2E.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, port int) (string, func()) {
	logger := zap.NewNop()

	promptRepo := repository.NewPromptRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	libraryRepo := repository.NewLibraryRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	auditLogRepo := repository.NewAuditLogRepository(pool)
	guardrailConfigRepo := repository.NewGuardrailConfigRepository(pool)
	guardrailLogRepo := repository.NewGuardrailLogRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	auditSvc := service.NewAuditService(auditLogRepo, logger)
	authSvc := service.NewAuthService(libraryRepo, apiKeyRepo, uuidGen, logger)
	authSvc.SetAuditor(auditSvc)

	engine := guardrails.NewEngine(guardrails.DefaultRuleSet())
	guardrailSvc := service.NewGuardrailService(engine, guardrailConfigRepo, guardrailLogRepo, auditSvc, logger)

	searchSvc := service.NewSearchService(searchRepo, nil, searchLogRepo, logger)
	promptSvc := service.NewPromptService(promptRepo, embeddingJobRepo, txRunner, auditSvc, searchSvc)
	categorySvc := service.NewCategoryService(categoryRepo, auditSvc, searchSvc)
	themeSvc := service.NewThemeService()
	exportSvc := service.NewExportService(libraryRepo, categoryRepo, promptRepo, s3Client, auditSvc)

	cfg := server.RouterConfig{
		AuthValidator:    authSvc,
		Limiter:          ratelimit.NoopLimiter{},
		Auditor:          auditSvc,
		Logger:           logger,
		PromptHandler:    handlers.NewPromptHandler(promptSvc),
		CategoryHandler:  handlers.NewCategoryHandler(categorySvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		ThemeHandler:     handlers.NewThemeHandler(themeSvc),
		AssistHandler:    handlers.NewAssistHandler(service.NoOpAssistService{}),
		GuardrailHandler: handlers.NewGuardrailHandler(guardrailSvc),
		AuditHandler:     handlers.NewAuditHandler(auditSvc),
		ExportHandler:    handlers.NewExportHandler(exportSvc),
		AuthHandler:      handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
