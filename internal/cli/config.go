package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/treepurge/internal/config"
)

// configView is the effective configuration with secrets redacted.
type configView struct {
	Root               string        `json:"root"`
	Journal            string        `json:"journal"`
	Config             config.Config `json:"config"`
	PurgeAvailable     bool          `json:"purgeAvailable"`
	UnavailableBecause string        `json:"unavailableBecause,omitempty"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging defaults, the config file and
TREEPURGE_* environment variables. Secrets are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		creds := rt.cfg.Credentials()
		redacted := *rt.cfg
		redacted.Cloudflare.APIToken = redact(redacted.Cloudflare.APIToken)
		redacted.Cloudflare.APIKey = redact(redacted.Cloudflare.APIKey)

		if jsonOutput {
			return outputJSON(configView{
				Root:               rt.paths.Root,
				Journal:            rt.paths.Journal,
				Config:             redacted,
				PurgeAvailable:     creds.Available(),
				UnavailableBecause: creds.Reason(),
			})
		}

		PrintSection("Paths")
		PrintLabelValue("Root", rt.paths.Root)
		PrintLabelValue("Journal", rt.paths.Journal)

		PrintSection("Cloudflare")
		PrintLabelValue("Zone", valueOrUnset(redacted.Cloudflare.ZoneID))
		PrintLabelValue("API token", valueOrUnset(redacted.Cloudflare.APIToken))
		PrintLabelValue("API email", valueOrUnset(redacted.Cloudflare.APIEmail))
		PrintLabelValue("API key", valueOrUnset(redacted.Cloudflare.APIKey))
		PrintLabelValue("Site", valueOrUnset(redacted.Site.BaseURL))
		if creds.Available() {
			PrintLabelValueWithColor("Purging", "enabled", successColor)
		} else {
			PrintLabelValueWithColor("Purging", "disabled ("+creds.Reason()+")", warningColor)
		}

		PrintSection("Planner")
		PrintLabelValue("Root detection", redacted.Planner.RootDetection)
		PrintLabelValue("Descendant scope", redacted.Planner.DescendantScope)
		return nil
	},
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
