package rules

// ExfiltrationRules is the table of transfer-verb-plus-secret-path
// conjunctions: attempts to move a credential-bearing file off the
// workstation. All entries are High severity.
var ExfiltrationRules = buildExfiltrationRules()

func exfilRule(id, pattern, message string) Rule {
	return r(id, High, CategoryExfiltration, pattern, message)
}

func buildExfiltrationRules() []Rule {
	return []Rule{
		exfilRule("curl-upload-env", `\bcurl\b.*(-d|--data|-F|--form).*@.*\.env\b`,
			"uploading .env file via curl"),
		exfilRule("curl-upload-credentials", `\bcurl\b.*(-d|--data|-F|--form).*@.*credentials\b`,
			"uploading credentials file via curl"),
		exfilRule("curl-upload-key", `\bcurl\b.*(-d|--data|-F|--form).*@.*\.(pem|key)\b`,
			"uploading key file via curl"),
		exfilRule("curl-upload-ssh", `\bcurl\b.*(-d|--data|-F|--form).*@.*\.ssh/`,
			"uploading SSH files via curl"),
		exfilRule("curl-data-binary", `\bcurl\b.*--data-binary\s+@`,
			"curl uploading binary data from file"),
		exfilRule("scp-env-out", `\bscp\b.*\.env\b.*:`,
			"copying .env file to remote host"),
		exfilRule("scp-key-out", `\bscp\b.*\.ssh/id_.*:`,
			"copying SSH key to remote host"),
		exfilRule("scp-credentials-out", `\bscp\b.*credentials.*:`,
			"copying credentials to remote host"),
		exfilRule("rsync-env-out", `\brsync\b.*\.env\b.*:`,
			"syncing .env file to remote host"),
		exfilRule("rsync-ssh-out", `\brsync\b.*\.ssh/.*:`,
			"syncing SSH directory to remote host"),
		exfilRule("nc-exfil-env", `\bnc\b.*<.*\.env\b`,
			"sending .env file via netcat"),
		exfilRule("nc-exfil-key", `\bnc\b.*<.*\.(pem|key)\b`,
			"sending key file via netcat"),
		exfilRule("base64-env", `\bbase64\b.*\.env\b`,
			"base64 encoding .env file (potential exfiltration)"),
		exfilRule("base64-ssh-key", `\bbase64\b.*\.ssh/id_`,
			"base64 encoding SSH key (potential exfiltration)"),
		exfilRule("dns-exfil", `\bnslookup\b.*\$\(`,
			"potential DNS exfiltration"),
		exfilRule("dig-exfil", `\bdig\b.*\$\(`,
			"potential DNS exfiltration via dig"),
		exfilRule("tar-env-pipe", `\btar\b.*\.env\b.*\|`,
			"tarring .env file and piping"),
		exfilRule("tar-ssh-pipe", `\btar\b.*\.ssh\b.*\|`,
			"tarring .ssh directory and piping"),
		exfilRule("wget-post-file", `\bwget\b.*--post-file`,
			"wget posting file data (potential exfiltration)"),
		exfilRule("wget-post-data", `\bwget\b.*--post-data`,
			"wget posting data (potential exfiltration)"),
		exfilRule("wget-method-post", `\bwget\b.*--method=POST`,
			"wget POST request (potential exfiltration)"),
		exfilRule("dev-tcp-write", `>\s*/dev/tcp/`,
			"writing to /dev/tcp (network exfiltration)"),
		exfilRule("dev-udp-write", `>\s*/dev/udp/`,
			"writing to /dev/udp (network exfiltration)"),
		exfilRule("dev-tcp-redirect", `/dev/tcp/[^\s]+`,
			"using /dev/tcp (bash network socket)"),
		exfilRule("aws-s3-cp-env", `\baws\s+s3\s+cp\b.*\.env\b`,
			"AWS S3 copying .env file"),
		exfilRule("aws-s3-cp-ssh", `\baws\s+s3\s+cp\b.*\.ssh/`,
			"AWS S3 copying SSH directory"),
		exfilRule("aws-s3-cp-credentials", `\baws\s+s3\s+cp\b.*credentials`,
			"AWS S3 copying credentials file"),
	}
}
