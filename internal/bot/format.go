package bot

import (
	"fmt"
	"strings"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

// FormatDetails renders an instance descriptor as a single chat line
func FormatDetails(d connector.Details) string {
	return fmt.Sprintf("id=%s status=%s ip-private=%s ip-public=%s security_groups=%s keypair=%s instance_type=%s",
		orDash(d.ID),
		orDash(string(d.State)),
		joinOrDash(d.PrivateIPs),
		joinOrDash(d.PublicIPs),
		joinOrDash(d.SecurityGroups),
		orDash(d.KeyPair),
		orDash(d.InstanceType),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(values []string) string {
	return orDash(strings.Join(values, ","))
}

// parseTags merges "k=v,k=v" user tags over the base tags for a new instance
func parseTags(name, raw string) (map[string]string, error) {
	tags := map[string]string{
		"Name": name,
		"team": "systems",
	}
	if strings.TrimSpace(raw) == "" {
		return tags, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", pair)
		}
		tags[key] = strings.TrimSpace(value)
	}
	return tags, nil
}
