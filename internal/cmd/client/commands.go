package client

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rzbill/pagelog/internal/cmd/client/transports"
	"github.com/rzbill/pagelog/internal/segment"
)

func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().String("transport", "grpc", "transport to use: grpc or http")
	cmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
}

func transportFromFlags(cmd *cobra.Command, baseURL BaseURLFunc) (transports.Transport, context.Context, context.CancelFunc, error) {
	kind, _ := cmd.Flags().GetString("transport")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	tr, err := transportFor(kind, baseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return tr, ctx, cancel, nil
}

func newAppendCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append [text...]",
		Short: "Send records to a running server",
		Long:  "Send one record built from the arguments, or with --stdin one record per input line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStdin, _ := cmd.Flags().GetBool("stdin")
			if !fromStdin && len(args) == 0 {
				return fmt.Errorf("nothing to append: pass text or --stdin")
			}
			tr, ctx, cancel, err := transportFromFlags(cmd, baseURL)
			if err != nil {
				return err
			}
			defer cancel()

			if !fromStdin {
				if err := tr.Append(ctx, []byte(strings.Join(args, " "))); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "appended: 1")
				return nil
			}
			n := 0
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if len(sc.Bytes()) == 0 {
					continue
				}
				if err := tr.Append(ctx, sc.Bytes()); err != nil {
					return fmt.Errorf("line %d: %w", n+1, err)
				}
				n++
			}
			if err := sc.Err(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "appended: %d\n", n)
			return nil
		},
	}
	addTransportFlags(cmd)
	cmd.Flags().Bool("stdin", false, "read records from stdin, one per line")
	return cmd
}

func newHealthCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, ctx, cancel, err := transportFromFlags(cmd, baseURL)
			if err != nil {
				return err
			}
			defer cancel()
			status, err := tr.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", status)
			return nil
		},
	}
	addTransportFlags(cmd)
	return cmd
}

func newSegmentsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "segments", Short: "Inspect segment files"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List segments registered in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, ctx, cancel, err := transportFromFlags(cmd, baseURL)
			if err != nil {
				return err
			}
			defer cancel()
			segs, err := tr.Segments(ctx)
			if err != nil {
				return err
			}
			withLines, _ := cmd.Flags().GetBool("lines")
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if withLines {
				fmt.Fprintln(tw, "SEQ\tOPENED\tSIZE\tLINES\tPATH")
			} else {
				fmt.Fprintln(tw, "SEQ\tOPENED\tSIZE\tPATH")
			}
			for _, s := range segs {
				size := s.Size
				if size < 0 {
					if n, err := segment.Size(s.Path); err == nil {
						size = n
					}
				}
				opened := time.UnixMilli(s.OpenedAtMs).UTC().Format(time.RFC3339)
				if !withLines {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.Seq, opened, size, s.Path)
					continue
				}
				// segments live on this host; "-" when the file is not readable here
				lines := "-"
				if n, err := segment.Count(s.Path); err == nil {
					lines = strconv.Itoa(n)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", s.Seq, opened, size, lines, s.Path)
			}
			return tw.Flush()
		},
	}
	addTransportFlags(list)
	list.Flags().Bool("lines", false, "Count lines in each segment (reads local files)")

	cat := &cobra.Command{
		Use:   "cat <path|seq>",
		Short: "Print the lines of a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				seq, perr := strconv.ParseUint(path, 10, 64)
				if perr != nil {
					return err
				}
				if path, err = lookupSegment(cmd, baseURL, seq); err != nil {
					return err
				}
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			if err := segment.ReadLines(path, func(line []byte) error {
				if _, err := out.Write(line); err != nil {
					return err
				}
				return out.WriteByte('\n')
			}); err != nil {
				return err
			}
			return out.Flush()
		},
	}
	addTransportFlags(cat)

	cmd.AddCommand(list, cat)
	return cmd
}

func lookupSegment(cmd *cobra.Command, baseURL BaseURLFunc, seq uint64) (string, error) {
	tr, ctx, cancel, err := transportFromFlags(cmd, baseURL)
	if err != nil {
		return "", err
	}
	defer cancel()
	segs, err := tr.Segments(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range segs {
		if s.Seq == seq {
			return s.Path, nil
		}
	}
	return "", fmt.Errorf("segment %d not found", seq)
}
