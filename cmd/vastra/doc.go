// Command vastra serves the storefront and admin APIs and runs their
// maintenance tasks.
//
//	vastra serve --port 8080
//	vastra migrate
//	vastra migrate:rollback
//	vastra migrate:status
//	vastra db:seed
//	vastra queue:work --workers 4
//	vastra schedule:run
//	vastra route:list
//
// Settings come from config/app.json, .env and the environment, in that
// order of precedence (lowest first).
package main
