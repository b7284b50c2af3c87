package app

// Command はsportzバイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe は試合APIのHTTPサーバーを起動する。引数なしの既定値。
	CommandServe Command = "serve"
	// CommandMigrate は埋め込みマイグレーションを適用して終了する。
	// docker-composeのmigrateサービスがapiより先に実行する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの/healthを叩き、結果を終了コードで返す。
	// シェルのないdistrolessイメージのHEALTHCHECKから呼ばれる。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 未知の値はserveとして扱い、余分な引数は無視する。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandMigrate:
		return CommandMigrate
	case CommandHealthcheck:
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
