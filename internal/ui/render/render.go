// Package render prints registry and fleet results for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/fleetctl/internal/fleet"
	"github.com/imamik/fleetctl/internal/registry"
)

// Column widths of the instance table.
const (
	indexWidth   = 8
	idWidth      = 21
	addressWidth = 35
)

var (
	colorRed   = lipgloss.Color("#ef4444")
	colorGreen = lipgloss.Color("#22c55e")
	colorDim   = lipgloss.Color("#6b7280")
)

// Renderer writes styled output to w. Styling is dropped automatically when
// w is not a terminal.
type Renderer struct {
	w      io.Writer
	header lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
}

// New returns a Renderer for w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		header: r.NewStyle().Bold(true),
		dim:    r.NewStyle().Foreground(colorDim),
		ok:     r.NewStyle().Foreground(colorGreen),
		failed: r.NewStyle().Foreground(colorRed),
	}
}

// Cluster prints the detail view of one cluster.
func (r *Renderer) Cluster(c *registry.Cluster) {
	fmt.Fprintf(r.w, "Displaying instances from cluster: %s\n", c.Name)
	fmt.Fprintf(r.w, "Instances of type: %s\n", c.InstanceType)
	fmt.Fprintln(r.w, r.header.Render(row("index", "instance id", "public dns name")))
	for i, inst := range c.Instances {
		fmt.Fprintln(r.w, row(strconv.Itoa(i), inst.ID, inst.PublicAddress))
	}
}

// Clusters prints every cluster, separated by blank lines.
func (r *Renderer) Clusters(clusters []*registry.Cluster) {
	if len(clusters) == 0 {
		fmt.Fprintln(r.w, "No clusters present.")
		return
	}
	for i, c := range clusters {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		r.Cluster(c)
	}
}

// Lines prints one value per line, e.g. the dns command's user@address list.
func (r *Renderer) Lines(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(r.w, l)
	}
}

// Results prints the per-instance outcome of a fleet operation.
func (r *Renderer) Results(results []fleet.Result) {
	for _, res := range results {
		label := fmt.Sprintf("[%d] %s", res.Index, res.Host)
		if res.Err != nil {
			fmt.Fprintf(r.w, "%s %s\n", r.failed.Render(label), res.Err)
		} else {
			fmt.Fprintln(r.w, r.ok.Render(label))
		}
		if out := strings.TrimRight(res.Output, "\n"); out != "" {
			fmt.Fprintln(r.w, out)
		}
	}
}

// Pending prints orphaned launches found by recover.
func (r *Renderer) Pending(entries []registry.Pending, dryRun bool) {
	if len(entries) == 0 {
		fmt.Fprintln(r.w, "No orphaned instances found.")
		return
	}
	verb := "Terminated"
	if dryRun {
		verb = "Would terminate"
	}
	for _, p := range entries {
		fmt.Fprintf(r.w, "%s %d instance(s) of cluster %s (%s): %s\n",
			verb, len(p.InstanceIDs), p.Cluster, p.Provider, strings.Join(p.InstanceIDs, ", "))
		fmt.Fprintln(r.w, r.dim.Render("  launched "+p.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	}
}

func row(index, id, address string) string {
	return fmt.Sprintf("%-*s%-*s%-*s", indexWidth, index, idWidth, id, addressWidth, address)
}
