package cmd

const (
	CommandAliasRoot      = "wizardlite"
	CommandNameConfigure  = "configure"
	CommandNameLocate     = "locate"
	CommandNameRoot       = "wzl"
	CommandNameSetup      = "setup"
	ConfigFileDefault     = "config.yaml"
	FlagNameConfigFile    = "config"
	FlagNameVerbose       = "verbose"
	FlagNameLocateBy      = "by"
	FlagNameLocateEngine  = "engine"
	FlagNameLocateHTML    = "html"
	FlagNameLocateTarget  = "target"
	FlagNameLocateText    = "text"
	FlagNameLocateTimeout = "timeout"
	FlagNameLocateURL     = "url"
)
