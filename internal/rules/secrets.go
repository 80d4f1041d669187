package rules

// SecretRules is the table of protected-path signatures: filenames and
// directory prefixes that commonly hold credentials. Matched against
// path arguments for read/edit/write tools, and against normalized
// command text for shell tools (to catch "cat .env").
var SecretRules = buildSecretRules()

func secretRule(id string, sev SafetyLevel, pattern, message string) Rule {
	rule := r(id, sev, CategorySecret, pattern, message)
	rule.Scope = ScopeAny
	return rule
}

func buildSecretRules() []Rule {
	var rules []Rule

	// Critical: direct credential files.
	rules = append(rules,
		secretRule("secret-env-file", Critical, `\.env$`,
			"environment file may contain secrets"),
		secretRule("secret-env-local", Critical, `\.env\.local$`,
			"local environment file may contain secrets"),
		secretRule("secret-env-production", Critical, `\.env\.production$`,
			"production environment file contains secrets"),
		secretRule("secret-ssh-key", Critical, `\.ssh/id_(rsa|ed25519|ecdsa|dsa)$`,
			"SSH private key file"),
		secretRule("secret-aws-credentials", Critical, `\.aws/credentials$`,
			"AWS credentials file"),
		secretRule("secret-kube-config", Critical, `\.kube/config$`,
			"Kubernetes config with credentials"),
		secretRule("secret-pem-file", Critical, `\.pem$`,
			"PEM certificate/key file"),
		secretRule("secret-p12-file", Critical, `\.p12$`,
			"PKCS#12 certificate file"),
		secretRule("secret-key-file", Critical, `\.key$`,
			"private key file"),
	)

	// High: config files that commonly hold credentials.
	rules = append(rules,
		secretRule("secret-credentials-json", High, `credentials\.json$`,
			"credentials configuration file"),
		secretRule("secret-secrets-file", High, `secrets?\.(json|ya?ml|toml)$`,
			"secrets configuration file"),
		secretRule("secret-docker-config", High, `\.docker/config\.json$`,
			"Docker registry credentials"),
		secretRule("secret-netrc", High, `\.netrc$`,
			"network credentials file"),
		secretRule("secret-npmrc", High, `\.npmrc$`,
			"npm authentication tokens"),
		secretRule("secret-pypirc", High, `\.pypirc$`,
			"PyPI authentication file"),
		secretRule("secret-pgpass", High, `\.pgpass$`,
			"PostgreSQL password file"),
		secretRule("secret-my-cnf", High, `\.my\.cnf$`,
			"MySQL credentials file"),
		secretRule("secret-gcp-credentials", High, `gcloud/credentials\.db$`,
			"GCP credentials database"),
		secretRule("secret-azure-profile", High, `\.azure/accessTokens\.json$`,
			"Azure access tokens"),
		secretRule("secret-github-token", High, `\.github/token$`,
			"GitHub token file"),
		secretRule("secret-gnupg-keyring", High, `\.gnupg/(secring|private-keys)`,
			"GPG private keyring"),
	)

	// Strict: files that might contain secrets.
	rules = append(rules,
		secretRule("secret-config-with-auth", Strict, `(config|settings)\.(json|ya?ml|toml)$`,
			"configuration file may contain credentials"),
		secretRule("secret-htpasswd", Strict, `\.htpasswd$`,
			"Apache password file"),
		secretRule("secret-shadow", Strict, `/etc/shadow$`,
			"system password hashes"),
		secretRule("secret-passwd", Strict, `/etc/passwd$`,
			"system user database"),
	)

	return rules
}
