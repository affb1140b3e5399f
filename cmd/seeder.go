package cmd

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/account"
	"github.com/spf13/cobra"
)

var seedAdmin account.RegistrationDTO
var seedAddress string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the first HR admin",
	Long:  `Register an HR admin account so a fresh deployment has someone who can create employees.`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedAdmin.Email, "email", "hr@mail.com", "admin email")
	seedCmd.Flags().StringVar(&seedAdmin.Password, "password", "password", "admin password")
	seedCmd.Flags().StringVar(&seedAdmin.FirstName, "first-name", "Padil", "admin first name")
	seedCmd.Flags().StringVar(&seedAdmin.LastName, "last-name", "Admin", "admin last name")
	seedCmd.Flags().StringVar(&seedAdmin.PhoneNumber, "phone", "81234567", "admin phone number")
	seedCmd.Flags().StringVar(&seedAddress, "address", "", "admin address")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(cfg)

	db, gdb, err := openDatabase(cfg, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	app := NewApp(cfg, gdb, lg)
	defer app.Close()

	dto := seedAdmin
	dto.Designation = "HR"
	if seedAddress != "" {
		dto.Address = &seedAddress
	}

	acc, err := app.Accounts.RegisterAdmin(context.Background(), dto)
	if errors.Is(err, apperrors.ErrEmailTaken) {
		fmt.Println("admin already exists:", dto.Email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	fmt.Println("Seeded admin:", acc.Email)
	return nil
}
