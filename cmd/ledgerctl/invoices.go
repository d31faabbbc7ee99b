package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/spf13/cobra"
)

// invoiceFlags are the editable fields shared by add and edit.
type invoiceFlags struct {
	id          string
	name        string
	description string
	amount      string
	date        string
}

func (f *invoiceFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&f.id, "id", "", "invoice id (issue number)")
		cmd.MarkFlagRequired("id")
	}
	cmd.Flags().StringVar(&f.name, "name", "", "customer name")
	cmd.Flags().StringVar(&f.description, "description", "", `line items separated by "|"`)
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 12,50")
	cmd.Flags().StringVar(&f.date, "date", "", "invoice date ("+core.DatePlaceholder+")")
}

func (f *invoiceFlags) record() core.InvoiceRecord {
	return core.InvoiceRecord{
		ID:           f.id,
		CustomerName: f.name,
		Descriptions: core.NormalizeDescription(f.description),
		Amount:       f.amount,
		Date:         f.date,
	}
}

func (a *app) addCmd() *cobra.Command {
	var f invoiceFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.service.AddInvoice(auditCtx(cmd), f.record())
			if err != nil {
				return errors.New(userError(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added invoice %s\n", rec.ID)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var f invoiceFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an invoice; flags that are not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := auditCtx(cmd)
			rec, err := a.service.GetInvoice(ctx, args[0])
			if err != nil {
				return errors.New(userError(err))
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				rec.CustomerName = f.name
			}
			if flags.Changed("description") {
				rec.Descriptions = core.NormalizeDescription(f.description)
			}
			if flags.Changed("amount") {
				rec.Amount = f.amount
			}
			if flags.Changed("date") {
				rec.Date = f.date
			}

			if _, err := a.service.EditInvoice(ctx, rec); err != nil {
				return errors.New(userError(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated invoice %s\n", rec.ID)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete invoices by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := a.service.DeleteInvoice(auditCtx(cmd), id); err != nil {
					return fmt.Errorf("delete %s: %s", id, userError(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted invoice %s\n", id)
			}
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search [NAME]",
		Aliases: []string{"list"},
		Short:   "List invoices whose customer name contains NAME",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			recs, err := a.service.SearchInvoices(auditCtx(cmd), name)
			if err != nil {
				return errors.New(userError(err))
			}
			return printInvoices(cmd.OutOrStdout(), recs)
		},
	}
}

func printInvoices(w io.Writer, recs []core.InvoiceRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tDATE\tDESCRIPTION")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CustomerName, r.Amount, r.Date, strings.Join(r.Descriptions, core.DescriptionSeparator))
	}
	return tw.Flush()
}
