package command

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/savevault-go/internal/cli/output"
	"github.com/yndnr/savevault-go/internal/storage"
	"github.com/yndnr/savevault-go/pkg/codec"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// Verification states reported by verify.
const (
	statusOK        = "ok"
	statusIntegrity = "integrity"
	statusError     = "error"
)

type recordRow struct {
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	FileID string `json:"file_id" yaml:"file_id"`
	Size   int64  `json:"size" yaml:"size"`
}

type recordRows []recordRow

func (r recordRows) Table() *output.Table {
	t := output.NewTable("KEY", "FILE_ID", "SIZE")
	for _, x := range r {
		t.AddRow(x.Key, x.FileID, strconv.FormatInt(x.Size, 10))
	}
	return t
}

type verifyRow struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type verifyRows []verifyRow

func (r verifyRows) Table() *output.Table {
	t := output.NewTable("RECORD", "STATUS", "DETAIL")
	for _, x := range r {
		t.AddRow(x.Name, x.Status, x.Detail)
	}
	return t
}

type backupRow struct {
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
}

type backupRows []backupRow

func (r backupRows) Table() *output.Table {
	t := output.NewTable("BACKUP", "CREATED")
	for _, x := range r {
		t.AddRow(x.Name, x.Created.Local().Format("2006-01-02 15:04:05"))
	}
	return t
}

// KeysCommand lists the records of the save directory.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:    "keys",
		Aliases: []string{"ls"},
		Usage:   "List stored records",
		Action:  keysAction,
	}
}

func keysAction(c *cli.Context) error {
	p, err := openProvider(c)
	if err != nil {
		return err
	}
	defer p.Close()

	records, err := p.Records()
	if err != nil {
		return err
	}
	rows := make(recordRows, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow{Key: r.Key, FileID: r.FileID, Size: r.Size})
	}
	return render(c, rows)
}

// ShowCommand prints one record as text.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Decode a record and print it",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Select the record by FileId instead of key",
			},
			&cli.StringFlag{
				Name:  "as",
				Usage: "Text format: tagged-text or compact-text",
				Value: codec.FormatTaggedText,
			},
		},
		Action: showAction,
	}
}

func showAction(c *cli.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	target, err := codec.New(c.String("as"))
	if err != nil {
		return err
	}
	if target.Name() == codec.FormatBinary {
		return fmt.Errorf("--as must be a text format")
	}

	p, err := openProvider(c)
	if err != nil {
		return err
	}
	defer p.Close()

	data, err := p.ReadEncoded(id)
	if err != nil {
		return err
	}
	text, err := codec.Transcode(data, p.Codec(), target)
	if err != nil {
		return err
	}
	if len(text) == 0 || text[len(text)-1] != '\n' {
		text = append(text, '\n')
	}
	_, err = c.App.Writer.Write(text)
	return err
}

func recordID(c *cli.Context) (string, error) {
	if id := c.String("id"); id != "" {
		if !storage.IsFileID(id) {
			return "", fmt.Errorf("%q is not a FileId", id)
		}
		return id, nil
	}
	key := c.Args().First()
	if key == "" {
		return "", fmt.Errorf("record key required")
	}
	return storage.FileID(key), nil
}

// VerifyCommand checks every record.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Decrypt, check and decode every record",
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	p, err := openProvider(c)
	if err != nil {
		return err
	}
	defer p.Close()

	records, err := p.Records()
	if err != nil {
		return err
	}

	rows := make(verifyRows, 0, len(records))
	failed := 0
	for _, r := range records {
		row := verifyRow{Name: r.Name(), Status: statusOK}
		if err := verifyRecord(p, r.FileID); err != nil {
			failed++
			row.Status = statusError
			if errors.Is(err, errs.ErrIntegrityMismatch) {
				row.Status = statusIntegrity
			}
			row.Detail = err.Error()
		}
		rows = append(rows, row)
	}

	if err := render(c, rows); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed verification", failed, len(records))
	}
	return nil
}

func verifyRecord(p *storage.FileProvider, id string) error {
	data, err := p.ReadEncoded(id)
	if err != nil {
		return err
	}
	var v any
	return p.Codec().Decode(data, &v)
}

// DeleteCommand removes a record.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a record; its backups are kept",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			return withKey(c, func(p *storage.FileProvider, key string) error {
				if err := p.Delete(key); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Deleted %s\n", key)
				return nil
			})
		},
	}
}

// RestoreCommand rolls a record back to its newest backup.
func RestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Replace a record with its newest backup",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			return withKey(c, func(p *storage.FileProvider, key string) error {
				if err := p.Restore(key); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Restored %s\n", key)
				return nil
			})
		},
	}
}

// BackupsCommand lists the backups of a record.
func BackupsCommand() *cli.Command {
	return &cli.Command{
		Name:      "backups",
		Usage:     "List the backups of a record, newest first",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			return withKey(c, func(p *storage.FileProvider, key string) error {
				backups, err := p.Backups(key)
				if err != nil {
					return err
				}
				rows := make(backupRows, 0, len(backups))
				for _, b := range backups {
					rows = append(rows, backupRow{Name: b.Name, Created: ulid.Time(b.ID.Time())})
				}
				return render(c, rows)
			})
		},
	}
}

func withKey(c *cli.Context, fn func(p *storage.FileProvider, key string) error) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("record key required")
	}
	p, err := openProvider(c)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p, key)
}
