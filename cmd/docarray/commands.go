package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/docarray"
	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
)

type configLoader func(cmd *cobra.Command) (Config, error)

// importBatchSize is the number of documents passed to each Extend call.
const importBatchSize = 256

// withArray opens the configured collection for the duration of fn.
func withArray(cmd *cobra.Command, load configLoader, fn func(da *docarray.DocumentArray) error) (err error) {
	cfg, err := load(cmd)
	if err != nil {
		return err
	}
	da, err := openArray(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := da.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(da)
}

func newLsCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			names, err := collections(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("list collections: %w", err)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newLenCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "len",
		Short: "Print the number of documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				fmt.Fprintln(cmd.OutOrStdout(), da.Len())
				return nil
			})
		},
	}
}

func newGetCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "get <index>",
		Short: "Print documents or attributes selected by an index",
		Long: `Print the result of indexing the collection as JSON.

Index forms:
  3, -1        offset
  abc          document id
  1:4, ::2     slice
  ...          all documents
  @c, @r,m     traversal path
  a,b,0        list of ids and offsets
  0:3#text     attribute of every selected document
  0#id,text    several attributes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.ParseString(args[0])
			if err != nil {
				return err
			}
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				v, err := da.Get(cmd.Context(), idx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
}

func newDeleteCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete documents or clear attributes selected by an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.ParseString(args[0])
			if err != nil {
				return err
			}
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				before := da.Len()
				if err := da.Delete(cmd.Context(), idx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents\n", before-da.Len())
				return nil
			})
		},
	}
}

func newVerifyCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compare the offset2id table with the stored payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				r, err := da.Verify(cmd.Context())
				if err != nil {
					return err
				}
				if err := yaml.NewEncoder(cmd.OutOrStdout()).Encode(r); err != nil {
					return err
				}
				return r.Err()
			})
		},
	}
}

func newRepairCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Reconcile the offset2id table with the stored payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				r, err := da.Repair(cmd.Context())
				if err != nil {
					return err
				}
				if r.OK() {
					fmt.Fprintln(cmd.OutOrStdout(), "offset2id is consistent")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "repaired: %d orphans dropped, %d duplicates dropped, %d ids appended, %d documents\n",
					len(r.Orphans), len(r.Duplicates), len(r.Missing), da.Len())
				return nil
			})
		},
	}
}

func newExportCmd(load configLoader) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every document as JSON lines in offset order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			bw := bufio.NewWriter(w)
			err := withArray(cmd, load, func(da *docarray.DocumentArray) error {
				enc := gojson.NewEncoder(bw)
				for d, err := range da.All(cmd.Context()) {
					if err != nil {
						return err
					}
					if err := enc.Encode(d); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(load configLoader) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Append JSON-lines documents to the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := cmd.InOrStdin()
			if in != "" {
				f, err := os.Open(in)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return withArray(cmd, load, func(da *docarray.DocumentArray) error {
				n, err := importDocs(cmd, da, r)
				if err != nil {
					return err
				}
				if err := da.Sync(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input file (default stdin)")
	return cmd
}

func importDocs(cmd *cobra.Command, da *docarray.DocumentArray, r io.Reader) (int, error) {
	dec := gojson.NewDecoder(r)
	batch := make([]*document.Document, 0, importBatchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := da.Extend(cmd.Context(), batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for line := 1; ; line++ {
		var d document.Document
		if err := dec.Decode(&d); err == io.EOF {
			break
		} else if err != nil {
			return total, fmt.Errorf("document %d: %w", line, err)
		}
		if d.ID == "" {
			d.ID = document.NewID()
		}
		batch = append(batch, &d)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func printJSON(w io.Writer, v any) error {
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
