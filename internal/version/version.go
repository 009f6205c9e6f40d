package version

const (
	AppName    = "Redini DiscordBot"
	AppVersion = "0.3.0"
)
