package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-clatex"
)

// Doctor statuses, from best to worst.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Project  projectInfo `json:"project"`
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// projectInfo holds the checks of the project itself.
type projectInfo struct {
	ConfigDir string   `json:"config_dir"` // Base of relative paths
	SourceDir string   `json:"source_dir,omitempty"`
	Documents int      `json:"documents"`
	Targets   []string `json:"targets,omitempty"`
	Templates []string `json:"templates,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Required bool   `json:"required"` // PDF enabled in the config
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd checks that a project can be built and returns an exit code:
// 0 when ready (warnings included), 1 when errors were found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var configName string
	var jsonOutput bool
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")
	fs.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(configName)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkProject(result, configName)
	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkProject loads the config and verifies that every start document,
// appendix and template set it names is available.
func checkProject(result *doctorResult, configName string) {
	cfg, configDir, err := loadConfig(configName)
	if err != nil {
		result.fail("%v", err)
		return
	}
	if abs, err := filepath.Abs(configDir); err == nil {
		result.Project.ConfigDir = abs
	}
	result.Chrome.Required = cfg.PDF.Enabled

	if len(cfg.Documents) == 0 {
		result.warn("No documents configured; use build --start or add documents to the config")
	}
	for _, d := range cfg.Documents {
		result.Project.Targets = append(result.Project.Targets, d.Target)
	}

	checkTemplates(result, cfg, configDir)
	if name := cfg.Highlight.Style; cfg.Highlight.Enabled && name != "" {
		if _, ok := styles.Registry[strings.ToLower(name)]; !ok {
			result.warn("Unknown highlight style %q; the fallback style is used", name)
		}
	}

	src, err := clatex.NewDirSource(resolveSourceDir(nil, cfg, configDir))
	if err != nil {
		result.fail("%v", err)
		return
	}
	result.Project.SourceDir = src.Root()
	names, err := src.Docnames()
	if err != nil {
		result.fail("Listing sources: %v", err)
		return
	}
	result.Project.Documents = len(names)
	for _, d := range cfg.Documents {
		if _, found := slices.BinarySearch(names, d.StartDoc); !found {
			result.fail("Start document %q of target %q not found in %s", d.StartDoc, d.Target, src.Root())
		}
	}
	for _, a := range cfg.Appendices {
		if _, found := slices.BinarySearch(names, a); !found {
			result.warn("Appendix %q not found; it will be skipped", a)
		}
	}
}

// checkTemplates loads both template sets, and the HTML style when one is set.
func checkTemplates(result *doctorResult, cfg *clatex.Config, configDir string) {
	loader, err := clatex.NewAssetLoader(resolveAssetPath("", cfg, configDir))
	if err != nil {
		result.fail("%v", err)
		return
	}
	for _, name := range builtinTemplateSets {
		if _, err := loader.LoadTemplateSet(name); err != nil {
			result.fail("Template set %q: %v", name, err)
			continue
		}
		result.Project.Templates = append(result.Project.Templates, name)
	}
	if cfg.HTML.Style != "" {
		if _, err := loader.LoadStyle(cfg.HTML.Style); err != nil {
			result.fail("HTML style %q: %v", cfg.HTML.Style, err)
		}
	}
}

// checkChrome detects Chrome/Chromium. A missing browser is an error only
// when the config enables PDF output.
func checkChrome(result *doctorResult) {
	missing := result.warn
	if result.Chrome.Required {
		missing = result.fail
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			missing("Chrome/Chromium not found; PDF output needs Chrome or ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		missing("Chrome not found at %s", chromePath)
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path from launcher or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.warn("Could not get Chrome version: %v", err)
	}
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container, and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("CLATEX_CONTAINER") == "1" {
		return true, "CLATEX_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that PDF printing can stage its temporary files.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "clatex-doctor-*")
	if err != nil {
		result.fail("Temp directory not writable: %s", os.TempDir())
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "clatex doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Project")
	if r.Project.ConfigDir != "" {
		fmt.Fprintf(w, "  [OK] Project directory: %s\n", r.Project.ConfigDir)
	}
	if r.Project.SourceDir != "" {
		fmt.Fprintf(w, "  [OK] Sources: %d document(s) in %s\n", r.Project.Documents, r.Project.SourceDir)
	}
	if len(r.Project.Targets) > 0 {
		fmt.Fprintf(w, "  [OK] Targets: %s\n", strings.Join(r.Project.Targets, ", "))
	}
	if len(r.Project.Templates) > 0 {
		fmt.Fprintf(w, "  [OK] Templates: %s\n", strings.Join(r.Project.Templates, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	case r.Chrome.Required:
		fmt.Fprintln(w, "  [ERROR] Not found")
	default:
		fmt.Fprintln(w, "  [WARN] Not found (only needed for --pdf)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
