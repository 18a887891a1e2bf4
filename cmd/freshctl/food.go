package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

// FoodReader is the read side of the food service used by the food commands.
type FoodReader interface {
	ListAll(ctx context.Context) ([]model.FoodItem, error)
	NearestExpiring(ctx context.Context) (*model.FoodItem, error)
	Get(ctx context.Context, id string) (*model.FoodItem, error)
	ListByCreator(ctx context.Context, email string) ([]model.FoodItem, error)
}

func runFoodList(ctx context.Context, c FoodReader, out io.Writer) error {
	items, err := c.ListAll(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, items)
}

func runFoodNearest(ctx context.Context, c FoodReader, out io.Writer) error {
	item, err := c.NearestExpiring(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, item)
}

func runFoodGet(ctx context.Context, c FoodReader, id string, out io.Writer) error {
	item, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(out, item)
}

func runFoodMine(ctx context.Context, c FoodReader, email string, out io.Writer) error {
	items, err := c.ListByCreator(ctx, email)
	if err != nil {
		return err
	}
	return printJSON(out, items)
}

func init() {
	foodCmd := &cobra.Command{Use: "food", Short: "Food item operations"}

	foodCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return runFoodList(cmd.Context(), c, cmd.OutOrStdout())
		},
	})

	foodCmd.AddCommand(&cobra.Command{
		Use:   "nearest",
		Short: "Show the item closest to expiring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return runFoodNearest(cmd.Context(), c, cmd.OutOrStdout())
		},
	})

	foodCmd.AddCommand(&cobra.Command{
		Use:   "get FOOD_ID",
		Short: "Get one item by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return runFoodGet(cmd.Context(), c, args[0], cmd.OutOrStdout())
		},
	})

	foodCmd.AddCommand(&cobra.Command{
		Use:   "mine EMAIL",
		Short: "List the items created by EMAIL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return runFoodMine(cmd.Context(), c, args[0], cmd.OutOrStdout())
		},
	})

	rootCmd.AddCommand(foodCmd)
}
