package log

// Version of the log facade. Bumped when Logger or Field change shape.
const Version = "0.2.0"
