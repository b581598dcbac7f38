package assistant

import "strings"

// Context is optional per-call conversational context supplied by the caller.
type Context struct {
	ProjectID string `json:"project_id,omitempty"`
	Scene     string `json:"scene,omitempty"`
	// RecentActions is ordered most-recent-last.
	RecentActions []string `json:"recent_actions,omitempty"`
}

// RecentActionsSeparator joins recent actions on a single line.
const RecentActionsSeparator = ", "

// BuildContext flattens ctx into one line per present field, in the order
// project, scene, recent actions. A nil or empty context yields "".
func BuildContext(ctx *Context) string {
	if ctx == nil {
		return ""
	}

	var lines []string
	if id := strings.TrimSpace(ctx.ProjectID); id != "" {
		lines = append(lines, "Project: "+id)
	}
	if scene := strings.TrimSpace(ctx.Scene); scene != "" {
		lines = append(lines, "Scene: "+scene)
	}

	actions := make([]string, 0, len(ctx.RecentActions))
	for _, a := range ctx.RecentActions {
		if a = strings.TrimSpace(a); a != "" {
			actions = append(actions, a)
		}
	}
	if len(actions) > 0 {
		lines = append(lines, "Recent actions: "+strings.Join(actions, RecentActionsSeparator))
	}

	return strings.Join(lines, "\n")
}
