package constants

const VERSION = "0.1.0"

const USER_AGENT = "rigveda-explorer/" + VERSION + " (+https://github.com/anki0476/rigveda-explorer)"
