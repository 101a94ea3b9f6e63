package cli

var (
	PrintResult     = printResult
	PrintSchema     = printSchema
	LoadEnvFile     = loadEnvFile
	EnvFileFromArgs = envFileFromArgs
)
