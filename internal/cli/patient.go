package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careledger/ledger/patient"
)

func newPatientCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage the patient directory",
	}
	cmd.AddCommand(newPatientAddCmd(opts))
	cmd.AddCommand(newPatientListCmd(opts))
	return cmd
}

func newPatientAddCmd(opts *rootOptions) *cobra.Command {
	var patientID string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a patient to the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, patients, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			p := &patient.Patient{ID: patientID, Name: args[0]}
			if err := patients.Add(cmd.Context(), p); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added patient %s (%s)\n", p.ID, p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&patientID, "id", "", "patient id (default next in sequence)")
	return cmd
}

func newPatientListCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, patients, stop, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ps, err := patients.List(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, ps)
			}
			if len(ps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patients.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPatientTable(ps))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
