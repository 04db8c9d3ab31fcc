package db

// sqlTimeLayout is the datetime format SQLite's date functions understand.
const sqlTimeLayout = "2006-01-02 15:04:05"
