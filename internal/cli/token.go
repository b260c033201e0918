package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"coopsched/internal/sched"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encode or decode wakeup tokens",
	}

	var (
		id   uint64
		prio string
		cpu  int
	)
	pack := &cobra.Command{
		Use:   "pack",
		Short: "Pack {id, priority, cpu} into a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sched.ParsePriority(prio)
			if err != nil {
				return err
			}
			if cpu < 0 || cpu >= sched.MaxCPUs {
				return fmt.Errorf("cpu %d out of range 0-%d", cpu, sched.MaxCPUs-1)
			}
			if sched.TaskID(id) > sched.MaxTaskID {
				return fmt.Errorf("id %d exceeds %d", id, sched.MaxTaskID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%#x\n", uint64(sched.Pack(sched.TaskID(id), p, cpu)))
			return nil
		},
	}
	pack.Flags().Uint64Var(&id, "id", 1, "Task id")
	pack.Flags().StringVar(&prio, "priority", "normal", "critical, normal or background")
	pack.Flags().IntVar(&cpu, "cpu", 0, "Owning CPU")

	unpack := &cobra.Command{
		Use:   "unpack <token>",
		Short: "Decode a token (decimal or 0x-prefixed hex)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := strconv.ParseUint(args[0], 0, 64)
			if err != nil {
				return fmt.Errorf("parse token %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sched.Token(raw).String())
			return nil
		},
	}

	cmd.AddCommand(pack, unpack)
	return cmd
}
