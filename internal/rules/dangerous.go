package rules

// DangerousRules is the table of destructive/risky shell command
// signatures, ordered critical, then high, then strict, matching the
// order the severity tie-break in the decision engine relies on.
var DangerousRules = buildDangerousRules()

func buildDangerousRules() []Rule {
	var rules []Rule

	// Critical: catastrophic, usually unrecoverable operations.
	rules = append(rules,
		r("rm-root", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*/*\s*$`,
			"attempting to delete root filesystem"),
		r("rm-home", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*(~|\$HOME|/home/\w+)\b`,
			"attempting to delete home directory"),
		r("rm-system-dirs", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*/(etc|usr|var|bin|sbin|lib|boot|opt)\b`,
			"attempting to delete system directories"),
		r("rm-wildcard-root", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*/\*`,
			"attempting to delete all files in root"),
		r("rm-boot", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*/boot/`,
			"attempting to delete boot files"),
		r("rm-kernel", Critical, CategoryDangerous,
			`\brm\s+(-[rfv]+\s+)*/lib/modules`,
			"attempting to delete kernel modules"),
		r("dd-to-device", Critical, CategoryDangerous,
			`\bdd\b.*\bof=/dev/(sd|nvme|hd|vd|xvd)[a-z]`,
			"writing directly to disk device"),
		r("mkfs-device", Critical, CategoryDangerous,
			`\bmkfs\.\w+\s+/dev/`,
			"formatting disk device"),
		r("fdisk-write", Critical, CategoryDangerous,
			`\bfdisk\s+/dev/`,
			"modifying disk partition table"),
		r("fork-bomb", Critical, CategoryDangerous,
			`:\(\)\s*\{.*:\s*\|\s*:.*&`,
			"fork bomb detected"),
		r("fork-bomb-alt", Critical, CategoryDangerous,
			`fork\s*while\s*fork|while\s*true.*fork`,
			"fork bomb pattern detected"),
	)

	// High: significant risk, usually recoverable but damaging.
	rules = append(rules,
		r("pipe-to-shell", High, CategoryDangerous,
			`\b(curl|wget)\b.*\|\s*(ba)?sh\b`,
			"piping remote content to shell (RCE risk)"),
		r("pipe-to-shell-zsh", High, CategoryDangerous,
			`\b(curl|wget)\b.*\|\s*zsh\b`,
			"piping remote content to zsh"),
		r("pipe-to-shell-python", High, CategoryDangerous,
			`\b(curl|wget)\b.*\|\s*python`,
			"piping remote content to python"),
		r("force-push-main", High, CategoryDangerous,
			`\bgit\s+push\b.*(-f|--force).*\b(main|master)\b`,
			"force pushing to main/master branch"),
		r("force-push-main-alt", High, CategoryDangerous,
			`\bgit\s+push\b.*\b(main|master)\b.*(-f|--force)`,
			"force pushing to main/master branch"),
		r("hard-reset", High, CategoryDangerous,
			`\bgit\s+reset\s+--hard\b`,
			"hard reset loses uncommitted changes"),
		r("git-clean-force", High, CategoryDangerous,
			`\bgit\s+clean\s+.*-[fd]*f`,
			"force clean deletes untracked files"),
		r("world-writable", High, CategoryDangerous,
			`\bchmod\b.*\b777\b`,
			"setting world-writable permissions"),
		r("chmod-recursive-permissive", High, CategoryDangerous,
			`\bchmod\s+-R\s+[67][67][67]\b`,
			"recursive permissive chmod"),
		r("echo-secret-env", High, CategoryDangerous,
			`\becho\b.*\$\w*(SECRET|KEY|TOKEN|PASSWORD|CREDENTIAL|API_KEY)`,
			"echoing secret environment variable"),
		r("printenv-all", High, CategoryDangerous,
			`^\s*printenv\s*$`,
			"dumping all environment variables"),
		r("env-dump", High, CategoryDangerous,
			`^\s*env\s*$`,
			"dumping all environment variables"),
		r("cat-env-file", High, CategoryDangerous,
			`\bcat\b.*\.env\b`,
			"reading .env file contents"),
		r("reverse-shell", High, CategoryDangerous,
			`bash\s+-i\s+>&\s*/dev/tcp/`,
			"reverse shell pattern detected"),
		r("reverse-shell-nc", High, CategoryDangerous,
			`\bnc\b.*-e\s*/bin/(ba)?sh`,
			"netcat reverse shell detected"),
		r("container-escape", High, CategoryDangerous,
			`\bdocker\s+run\b.*--privileged`,
			"running privileged container"),
		r("container-escape-mount", High, CategoryDangerous,
			`\bdocker\s+run\b.*-v\s+/:/`,
			"mounting host root in container"),
		r("cat-ssh-key", High, CategoryDangerous,
			`\bcat\b.*\.ssh/id_`,
			"reading SSH private key"),
		r("sudo-bash-c", High, CategoryDangerous,
			`\bsudo\s+bash\s+-c\b`,
			"sudo executing bash command"),
	)

	// Strict: cautionary operations, only active at the strictest level.
	rules = append(rules,
		r("any-force-push", Strict, CategoryDangerous,
			`\bgit\s+push\b.*(-f|--force)\b`,
			"force push (use --force-with-lease instead)"),
		r("sudo-rm", Strict, CategoryDangerous,
			`\bsudo\s+rm\b`,
			"using sudo with rm command"),
		r("prune", Strict, CategoryDangerous,
			`\bdocker\s+system\s+prune\b`,
			"docker system prune removes containers/images"),
		r("image-prune", Strict, CategoryDangerous,
			`\bdocker\s+image\s+prune\s+-a`,
			"docker image prune -a removes all unused images"),
		r("drop-database", Strict, CategoryDangerous,
			`\bDROP\s+DATABASE\b`,
			"dropping database"),
		r("truncate-table", Strict, CategoryDangerous,
			`\bTRUNCATE\s+TABLE\b`,
			"truncating table"),
		r("npm-cache-clean", Strict, CategoryDangerous,
			`\bnpm\s+cache\s+clean\s+--force\b`,
			"clearing npm cache"),
		r("killall", Strict, CategoryDangerous,
			`\bkillall\s+-9\b`,
			"force killing all processes by name"),
		r("pkill-all", Strict, CategoryDangerous,
			`\bpkill\s+-9\b`,
			"force killing processes by pattern"),
		r("history-clear", Strict, CategoryDangerous,
			`\bhistory\s+-c\b`,
			"clearing shell history"),
		r("rm-rf-star", Strict, CategoryDangerous,
			`\brm\s+-rf\s+\*`,
			"recursive delete with wildcard"),
	)

	return rules
}
