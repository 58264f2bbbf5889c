// Package registrar implements the AccountRegistrar interface by driving an
// external automation script, one process per registration attempt.
package registrar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
	"github.com/turtacn/kam/pkg/utils"
)

// output markers the automation script prints on success; both the
// localized and the plain form are accepted
var (
	emailMarkers     = []string{"邮箱: ", "email: "}
	passwordMarkers  = []string{"密码: ", "password: "}
	accountIDMarkers = []string{"账号ID: ", "account_id: "}
)

// ScriptRegistrar runs the configured command once per attempt, feeds the
// registration settings through environment variables and parses the
// resulting credentials from stdout.
type ScriptRegistrar struct {
	cfg    config.BatchConfig
	log    logger.Logger
	onLine func(string)
	mu     sync.Mutex
}

// NewScriptRegistrar builds a registrar. onLine, when non-nil, receives
// every stdout line as it is produced.
func NewScriptRegistrar(cfg config.BatchConfig, log logger.Logger, onLine func(string)) *ScriptRegistrar {
	return &ScriptRegistrar{cfg: cfg, log: log, onLine: onLine}
}

// Register runs one attempt. The spawned process is killed when ctx is
// cancelled or the configured item timeout elapses.
func (r *ScriptRegistrar) Register(ctx context.Context, settings models.RegistrationSettings) (*models.RegisteredAccount, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	timeout := time.Duration(r.cfg.ItemTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.cfg.ScriptCommand, r.cfg.ScriptArgs...)
	cmd.Dir = r.cfg.WorkDir
	// the script may fork helpers that inherit the stdout pipe; kill the
	// whole process group on cancellation and bound the pipe drain so a
	// surviving grandchild cannot keep Register blocked
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = 3 * time.Second
	cmd.Env = append(os.Environ(),
		"EMAIL_IMAP_SERVER="+settings.ImapServer,
		"EMAIL_DOMAIN="+settings.EmailDomain,
		"EMAIL_PASSWORD="+settings.EmailPassword,
		// a fresh password for the account this attempt creates
		"ACCOUNT_PASSWORD="+utils.GeneratePassword(utils.DefaultPasswordLength),
	)
	if settings.Proxy.Enabled {
		proxy := fmt.Sprintf("http://%s:%d", settings.Proxy.Host, settings.Proxy.Port)
		cmd.Env = append(cmd.Env, "HTTP_PROXY="+proxy, "HTTPS_PROXY="+proxy)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.ErrServer("attaching to script stdout failed").WithCause(err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, errors.ErrServer("starting registration script failed").WithCause(err)
	}

	account := &models.RegisteredAccount{}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := scanner.Text()
		r.emitLine(line)
		r.parseLine(line, account)
	}

	waitErr := cmd.Wait()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, errors.ErrServer("registration script timed out").WithCause(runCtx.Err())
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if waitErr != nil {
		return nil, errors.ErrServer("registration script failed").WithCause(waitErr)
	}

	if account.Email == "" || account.Password == "" {
		return nil, errors.ErrServer("registration script produced no credentials")
	}

	r.log.Info(ctx, "account registered", logger.Fields{"email": account.Email})
	return account, nil
}

func (r *ScriptRegistrar) emitLine(line string) {
	if r.onLine == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLine(line)
}

func (r *ScriptRegistrar) parseLine(line string, account *models.RegisteredAccount) {
	if v, ok := matchMarker(line, emailMarkers); ok {
		account.Email = v
		return
	}
	if v, ok := matchMarker(line, passwordMarkers); ok {
		account.Password = v
		return
	}
	if v, ok := matchMarker(line, accountIDMarkers); ok {
		account.AccountID = v
	}
}

func matchMarker(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		if idx := strings.Index(line, marker); idx >= 0 {
			return strings.TrimSpace(line[idx+len(marker):]), true
		}
	}
	return "", false
}
