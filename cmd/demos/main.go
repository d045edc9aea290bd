package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/devops-utils/richter/internal/demo"
	"github.com/devops-utils/richter/internal/protocol"
)

// demos manages the local recording catalog: list indexed demos, register
// new files, or drop stale entries.
func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "add":
			addCmd(os.Args[2:])
			return
		case "remove":
			removeCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openIndex(path string) *demo.Index {
	ix, err := demo.OpenIndex(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	return ix
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("demos", flag.ExitOnError)
	indexPath := fs.String("index", "./demos.db", "demo index database")
	_ = fs.Parse(args)

	ix := openIndex(*indexPath)
	defer ix.Close()

	entries, err := ix.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMAP\tPROTO\tFRAMES\tDURATION\tRECORDED\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%s\t%s\n",
			e.Name, e.Map, e.Protocol, e.Frames,
			e.Duration.Round(time.Second),
			e.RecordedAt.Format(time.RFC3339), e.Path)
	}
	w.Flush()
}

func addCmd(args []string) {
	fs := flag.NewFlagSet("demos add", flag.ExitOnError)
	indexPath := fs.String("index", "./demos.db", "demo index database")
	file := fs.String("file", "", "demo file to register")
	_ = fs.Parse(args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}

	meta, frames, duration, err := scanDemo(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan demo:", err)
		os.Exit(1)
	}

	ix := openIndex(*indexPath)
	defer ix.Close()

	err = ix.Add(demo.IndexEntry{
		Name:       meta.Name,
		Path:       *file,
		Map:        meta.Map,
		Protocol:   meta.Protocol,
		RecordedAt: meta.RecordedAt,
		Frames:     frames,
		Duration:   duration,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "index add:", err)
		os.Exit(1)
	}
	fmt.Printf("indexed %q: map=%s frames=%d duration=%v\n",
		meta.Name, meta.Map, frames, duration.Round(time.Second))
}

func removeCmd(args []string) {
	fs := flag.NewFlagSet("demos remove", flag.ExitOnError)
	indexPath := fs.String("index", "./demos.db", "demo index database")
	name := fs.String("name", "", "recording name to drop")
	_ = fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "missing -name")
		os.Exit(2)
	}

	ix := openIndex(*indexPath)
	defer ix.Close()

	if err := ix.Remove(*name); err != nil {
		fmt.Fprintln(os.Stderr, "index remove:", err)
		os.Exit(1)
	}
	fmt.Printf("removed %q\n", *name)
}

// scanDemo walks a recording once, counting messages and tracking the last
// server timestamp for the duration column.
func scanDemo(path string) (demo.Metadata, int, time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return demo.Metadata{}, 0, 0, err
	}

	r, err := demo.NewReader(f)
	if err != nil {
		return demo.Metadata{}, 0, 0, err
	}
	defer r.Close()

	frames := 0
	var lastTime time.Duration
	for {
		frame, err := r.Next()
		if err != nil {
			return demo.Metadata{}, 0, 0, err
		}
		if frame == nil {
			break
		}
		frames++
		if t, ok := lastServerTime(frame.Payload); ok {
			lastTime = t
		}
	}
	return r.Metadata(), frames, lastTime, nil
}

// lastServerTime decodes the message just far enough to find a time
// command.
func lastServerTime(payload []byte) (time.Duration, bool) {
	r := protocol.NewReader(payload)
	var found bool
	var t time.Duration
	for {
		cmd, err := protocol.ReadServerCmd(r)
		if err != nil || cmd == nil {
			return t, found
		}
		if tc, ok := cmd.(protocol.TimeCmd); ok {
			t = time.Duration(float64(tc.Time) * float64(time.Second))
			found = true
		}
	}
}
