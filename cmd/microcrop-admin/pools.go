package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
)

func newPoolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Manage blockchain-backed liquidity pools",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List liquidity pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			pools, page, err := a.client.ListPools(ctx, api.ListParams{})
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": pools, "pagination": page})
			}
			rows := make([][]string, 0, len(pools))
			for _, p := range pools {
				rows = append(rows, []string{
					p.ID, p.Name, p.Currency,
					strconv.FormatFloat(p.AvailableLiquidity, 'f', 2, 64) + "/" + strconv.FormatFloat(p.TotalLiquidity, 'f', 2, 64),
					strconv.FormatFloat(p.APY, 'f', 1, 64) + "%",
				})
			}
			table([]string{"ID", "NAME", "CCY", "AVAILABLE/TOTAL", "APY"}, rows)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <pool-id>",
		Short: "Show one pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			p, err := a.client.GetPool(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(p)
		},
	}

	var amount float64
	deposit := &cobra.Command{
		Use:   "deposit <pool-id>",
		Short: "Deposit liquidity into a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			tx, err := a.client.Deposit(ctx, args[0], amount)
			if err != nil {
				return err
			}
			fmt.Printf("Deposit %s submitted: %s\n", tx.ID, tx.TxHash)
			return nil
		},
	}
	deposit.Flags().Float64Var(&amount, "amount", 0, "deposit amount")
	deposit.MarkFlagRequired("amount")

	var wAmount float64
	withdraw := &cobra.Command{
		Use:   "withdraw <pool-id>",
		Short: "Withdraw liquidity from a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			tx, err := a.client.Withdraw(ctx, args[0], wAmount)
			if err != nil {
				return err
			}
			fmt.Printf("Withdrawal %s submitted: %s\n", tx.ID, tx.TxHash)
			return nil
		},
	}
	withdraw.Flags().Float64Var(&wAmount, "amount", 0, "withdrawal amount")
	withdraw.MarkFlagRequired("amount")

	txs := &cobra.Command{
		Use:   "transactions <pool-id>",
		Short: "List the ledger of a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			items, page, err := a.client.ListPoolTransactions(ctx, args[0], api.ListParams{})
			if err != nil {
				return err
			}
			if a.wantsJSON() {
				return a.printResult(map[string]any{"data": items, "pagination": page})
			}
			rows := make([][]string, 0, len(items))
			for _, tx := range items {
				rows = append(rows, []string{
					tx.ID, tx.Type, strconv.FormatFloat(tx.Amount, 'f', 2, 64), tx.Status, tx.TxHash,
				})
			}
			table([]string{"ID", "TYPE", "AMOUNT", "STATUS", "TX"}, rows)
			return nil
		},
	}

	cmd.AddCommand(list, get, deposit, withdraw, txs)
	return cmd
}
