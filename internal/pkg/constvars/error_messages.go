package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"alphanum": "must contain only alphanumeric characters",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"eqfield":  "must match %s",
	"password": "must be at least 8 characters long, contain at least one special character, and one uppercase letter",
	"oneof":    "must be one of [%s]",
	"role":     "must be either 'patient', 'caretaker' or 'medical'",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":     true,
	"max":     true,
	"eqfield": true,
	"oneof":   true,
}

// Error messages for clients. Identity errors map to this fixed set; raw
// provider codes never reach the client.
const (
	ErrClientPasswordsDoNotMatch           = "passwords do not match"
	ErrClientEmailAlreadyExists            = "email already used"
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientInvalidEmailOrPassword        = "invalid email or password"
	ErrClientAccountDisabled               = "your account has been disabled, please contact support"
	ErrClientTooManyAttempts               = "too many sign-in attempts, please try again later"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientUnknownRole                   = "role must be either 'patient', 'caretaker' or 'medical'"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
)

// Error messages for developers
const (
	ErrDevInvalidInput              = "invalid input"
	ErrDevValidationFailed          = "request validation failed"
	ErrDevCannotParseJSON           = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON         = "cannot convert struct or other data types to JSON"
	ErrDevFailedToHashPassword      = "failed to hash the given password"
	ErrDevInvalidCredentials        = "credentials do not match any user"
	ErrDevAccountDisabled           = "account flagged as disabled"
	ErrDevSignInRateLimited         = "sign-in attempts rate limited"
	ErrDevEmailAlreadyExists        = "email already exists in users collection"
	ErrDevUserNotExists             = "user does not exist"
	ErrDevProfileMissing            = "no profile document for identity id"
	ErrDevProfileBadRole            = "profile role outside known role set"
	ErrDevAuthGenerateToken         = "failed to generate token"
	ErrDevAuthSigningMethod         = "unexpected token signing method"
	ErrDevAuthTokenMissing          = "authorization token missing"
	ErrDevAuthTokenInvalid          = "authorization token invalid"
	ErrDevAuthTokenInvalidOrExpired = "authorization token invalid or expired"
	ErrDevServerDeadlineExceeded    = "server deadline exceeded"
	ErrDevServerProcess             = "error while processing request"

	ErrDevDBFailedToFindDocument    = "failed to find document in mongo collection"
	ErrDevDBFailedToInsertDocument  = "failed to insert document into mongo collection"
	ErrDevDBFailedToUpdateDocument  = "failed to update document in mongo collection"
	ErrDevDBFailedToDeleteDocument  = "failed to delete document in mongo collection"
	ErrDevDBFailedToIterateDocument = "failed to iterate mongo cursor"
	ErrDevDBStringNotObjectID       = "given string is not a valid mongo object id"
	ErrDevDBFailedToWatchCollection = "failed to open change stream on mongo collection"

	ErrDevRedisSetData    = "failed to set data to redis"
	ErrDevRedisGetData    = "failed to get data from redis"
	ErrDevRedisGetNoData  = "no data in redis for key %s"
	ErrDevRedisDeleteData = "failed to delete data from redis"

	ErrDevRabbitMQPublishMessage = "failed to publish message to queue %s"

	ErrDevMinioFailedToCreateObject = "failed to create object in bucket %s"
)
