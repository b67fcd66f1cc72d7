package main

import (
	"context"
	"fmt"
	"os"

	"nostrdrive/internal/app"
	"nostrdrive/internal/config"
	"nostrdrive/internal/identity"
	"nostrdrive/internal/nostrcrypto"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config, prompts for the identity passphrase, and
// wires a fully running DriveApp. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.DriveApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	passphrase, err := readPassphrase("Identity passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	a, err := app.NewDriveApp(ctx, cfg, passphrase)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "nostrdrive",
	Short: "End-to-end encrypted personal drive over Nostr relays and Blossom blob servers",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Index:     %s\n", cfg.Index.Type)
		fmt.Printf("Blob:      %s\n", cfg.Blob.Type)
		fmt.Printf("Relay:     %s %v\n", cfg.Relay.Type, cfg.Relay.URLs)
		return nil
	},
}

// identity command

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage the local signing identity",
}

var identityInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a new identity and encrypt it at rest",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		gen := nostrcrypto.KeyGenerator{}
		privateKeyHex, publicKeyHex, err := gen.Generate()
		if err != nil {
			return fmt.Errorf("generating identity: %w", err)
		}

		passphrase, err := readPassphrase("New identity passphrase: ")
		if err != nil {
			return err
		}

		ks := identity.NewKeyStore(cfg.Identity.KeyPath)
		if err := ks.Setup(privateKeyHex, passphrase); err != nil {
			return fmt.Errorf("encrypting identity at rest: %w", err)
		}

		fmt.Printf("Identity created. Public key: %s\n", publicKeyHex)
		return nil
	},
}

// ls command

var lsCmd = &cobra.Command{
	Use:   "ls PATH",
	Short: "List files and folders under PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Service().List(args[0], nil, recursive)
		if err != nil {
			return err
		}

		for _, it := range items {
			kind := "file"
			if it.IsFolder {
				kind = "dir "
			}
			fmt.Printf("%-4s %10d  %s  %s\n", kind, it.Size, it.CreatedAt.Format("2006-01-02 15:04:05"), it.Path)
		}
		return nil
	},
}

// mkdir command

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Service().CreateFolder(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Created folder: %s\n", args[0])
		return nil
	},
}

// upload command

var uploadCmd = &cobra.Command{
	Use:   "upload LOCAL_FILE REMOTE_PATH",
	Short: "Upload a local file to REMOTE_PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		mimeType, _ := cmd.Flags().GetString("mime-type")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading local file: %w", err)
		}

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		meta, err := a.Service().UploadFile(ctx, data, args[1], mimeType, encrypt)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s (hash %s, %d bytes)\n", meta.Path, meta.Hash, meta.Size)
		return nil
	},
}

// download command

var downloadCmd = &cobra.Command{
	Use:   "download HASH LOCAL_FILE",
	Short: "Download a blob by content hash (unencrypted files only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := a.Service().DownloadFile(args[0], nil, nil)
		if err != nil {
			return err
		}

		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("writing local file: %w", err)
		}
		fmt.Printf("Downloaded %d bytes to %s\n", len(data), args[1])
		return nil
	},
}

// rm command

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Delete a file or folder by path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteByPath(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted: %s\n", args[0])
		return nil
	},
}

// mv command

var mvCmd = &cobra.Command{
	Use:   "mv OLD_PATH NEW_PATH",
	Short: "Move or rename a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Move(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Moved %s -> %s\n", args[0], args[1])
		return nil
	},
}

// cp command

var cpCmd = &cobra.Command{
	Use:   "cp SRC_PATH DST_PATH",
	Short: "Copy a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Copy(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Copied %s -> %s\n", args[0], args[1])
		return nil
	},
}

// search command

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search file and folder names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Service().Search(args[0])
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Println(it.Path)
		}
		return nil
	},
}

// share command

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share files with other accounts or via a link",
}

var shareWithCmd = &cobra.Command{
	Use:   "with EVENT_ID RECIPIENT_PUBKEY",
	Short: "Re-encrypt and re-broadcast a file to another Nostr account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.Service().ShareWithUser(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Shared %s with %s (new event %s)\n", item.Path, args[1], item.EventID)
		return nil
	},
}

var shareLinkCmd = &cobra.Command{
	Use:   "link EVENT_ID",
	Short: "Generate a shareable nevent link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		baseURL, _ := cmd.Flags().GetString("base-url")

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.Service().GenerateShareLink(ctx, args[0], password, baseURL, nil)
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	},
}

var shareRevokeCmd = &cobra.Command{
	Use:   "revoke EVENT_ID",
	Short: "Revoke a previously shared file (best-effort, not cryptographic)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RevokeShare(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Revoked: %s\n", args[0])
		return nil
	},
}

// open command: consumes a share link created by someone else's `share link`.

var openCmd = &cobra.Command{
	Use:   "open NEVENT [SK_SHARE]",
	Short: "Access a shared file via its nevent link",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		var skShare string
		if len(args) > 1 {
			skShare = args[1]
		}

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		meta, err := a.Service().AccessSharedFile(ctx, args[0], skShare)
		if err != nil {
			return err
		}

		fmt.Printf("Shared file: %s (hash %s, %d bytes)\n", meta.Path, meta.Hash, meta.Size)
		if outPath != "" {
			fmt.Println("Note: downloading plaintext bytes requires the blob's content key separately; only metadata was fetched.")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	identityCmd.AddCommand(identityInitCmd)

	shareCmd.AddCommand(shareWithCmd)
	shareCmd.AddCommand(shareLinkCmd)
	shareLinkCmd.Flags().String("password", "", "Password-protect the share's private key segment")
	shareLinkCmd.Flags().String("base-url", "", "Base URL to prefix the generated link with")
	shareCmd.AddCommand(shareRevokeCmd)

	openCmd.Flags().String("out", "", "Local output path; no file is written: only metadata is fetched, and setting this prints a note")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolP("recursive", "r", false, "Recurse into subfolders")
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().Bool("encrypt", false, "Encrypt file content with AES-256-GCM before upload")
	uploadCmd.Flags().String("mime-type", "application/octet-stream", "MIME type to record for the uploaded file")
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(openCmd)
}
