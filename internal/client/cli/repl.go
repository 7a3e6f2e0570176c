package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a lightweight stub.
type execIface interface {
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Groups(ctx context.Context, args []string) error
	Tags(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Enable(ctx context.Context, args []string) error
	Disable(ctx context.Context, args []string) error
	Connect(ctx context.Context) error
	CreateSpace(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = `Available commands:
  new                         write a note (#tags inline)
  edit <id>                   replace a note's text
  delete <id>                 delete a note
  show <id>                   print a note
  list [--tags t1,t2] [--or] [--group key] [--search text]
  groups [day|week|month]     count notes per period
  tags                        list tags with counts
  search <text>               full-text search
  sync                        push local changes and pull remote ones
  enable <id> | disable <id>  toggle sync for a note
  connect                     set server URL, space id and secret
  space-create [name]         create a space on the server
  backup                      upload a snapshot to S3
  status                      show sync settings and last result
  exit | quit                 leave the program`

// runREPL reads commands from reader until EOF, "exit" or "quit", or ctx
// cancellation, and dispatches them to a. Command errors are printed and
// the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "anymind %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
		case "new":
			cmdErr = a.New(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "groups":
			cmdErr = a.Groups(ctx, args)
		case "tags":
			cmdErr = a.Tags(ctx)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "sync":
			cmdErr = a.Sync(ctx)
		case "enable":
			cmdErr = a.Enable(ctx, args)
		case "disable":
			cmdErr = a.Disable(ctx, args)
		case "connect":
			cmdErr = a.Connect(ctx)
		case "space-create":
			cmdErr = a.CreateSpace(ctx, args)
		case "backup":
			cmdErr = a.Backup(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
