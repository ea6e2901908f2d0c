package services

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// GitRecorder turns working-tree changes of the local store into commits,
// optionally pushing each one.
type GitRecorder struct {
	Dir       string
	UserName  string
	UserEmail string
	Branch    string
	Remote    string
	// PushToken, when set, pushes every commit to Remote authenticated as oauth2.
	PushToken string
}

// Commit stages path (including its removal) and commits it alone.
func (g *GitRecorder) Commit(ctx context.Context, path, message string) (string, error) {
	if out, err := g.run(ctx, "add", "-A", "--", path); err != nil {
		return "", fmt.Errorf("git add: %w: %s", err, out)
	}
	args := []string{
		"-c", "user.name=" + g.UserName,
		"-c", "user.email=" + g.UserEmail,
		"commit", "-m", message, "--", path,
	}
	if out, err := g.run(ctx, args...); err != nil {
		return "", fmt.Errorf("git commit: %w: %s", err, out)
	}
	sha, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	if g.PushToken != "" {
		if log, err := g.push(ctx); err != nil {
			return "", fmt.Errorf("git push: %w: %s", err, log)
		}
	}
	return strings.TrimSpace(sha), nil
}

func (g *GitRecorder) push(ctx context.Context) (string, error) {
	remoteURL, err := g.run(ctx, "remote", "get-url", g.Remote)
	if err != nil {
		return "failed to get remote url", err
	}
	remoteURL = strings.TrimSpace(remoteURL)
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "invalid remote url", err
	}
	u.User = url.UserPassword("oauth2", g.PushToken)
	authenticated := u.String()

	out, err := g.run(ctx, "push", authenticated, "HEAD:"+g.Branch)
	safe := strings.ReplaceAll(out, authenticated, remoteURL)
	safe = strings.ReplaceAll(safe, g.PushToken, "***")
	return safe, err
}

func (g *GitRecorder) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
