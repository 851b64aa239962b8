package gl

type (
	Attrib       uint32
	Enum         uint32
	Buffer       uint32
	Texture      uint32
	Program      uint32
	Shader       uint32
	Framebuffer  uint32
	Renderbuffer uint32
	Sampler      uint32
)

// Uniform is a uniform location inside a linked program. Negative values
// mean the uniform is not active.
type Uniform int32

// InvalidUniform is returned for names the program does not use.
const InvalidUniform Uniform = -1

// Valid reports whether u refers to an active uniform.
func (u Uniform) Valid() bool { return u >= 0 }

const (
	NO_ERROR                      = 0x0
	INVALID_ENUM                  = 0x0500
	INVALID_VALUE                 = 0x0501
	INVALID_OPERATION             = 0x0502
	OUT_OF_MEMORY                 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION = 0x0506

	FALSE = 0
	TRUE  = 1
	NONE  = 0
	ZERO  = 0
	ONE   = 1

	BLEND               = 0x0BE2
	CULL_FACE           = 0x0B44
	DEPTH_TEST          = 0x0B71
	STENCIL_TEST        = 0x0B90
	SCISSOR_TEST        = 0x0C11
	POLYGON_OFFSET_FILL = 0x8037
	MULTISAMPLE         = 0x809D

	FRONT          = 0x0404
	BACK           = 0x0405
	FRONT_AND_BACK = 0x0408
	CW             = 0x0900
	CCW            = 0x0901

	SRC_COLOR                = 0x0300
	ONE_MINUS_SRC_COLOR      = 0x0301
	SRC_ALPHA                = 0x0302
	ONE_MINUS_SRC_ALPHA      = 0x0303
	DST_ALPHA                = 0x0304
	ONE_MINUS_DST_ALPHA      = 0x0305
	DST_COLOR                = 0x0306
	ONE_MINUS_DST_COLOR      = 0x0307
	SRC_ALPHA_SATURATE       = 0x0308
	CONSTANT_COLOR           = 0x8001
	ONE_MINUS_CONSTANT_COLOR = 0x8002

	FUNC_ADD              = 0x8006
	MIN                   = 0x8007
	MAX                   = 0x8008
	FUNC_SUBTRACT         = 0x800A
	FUNC_REVERSE_SUBTRACT = 0x800B

	NEVER    = 0x0200
	LESS     = 0x0201
	EQUAL    = 0x0202
	LEQUAL   = 0x0203
	GREATER  = 0x0204
	NOTEQUAL = 0x0205
	GEQUAL   = 0x0206
	ALWAYS   = 0x0207

	KEEP      = 0x1E00
	REPLACE   = 0x1E01
	INCR      = 0x1E02
	DECR      = 0x1E03
	INVERT    = 0x150A
	INCR_WRAP = 0x8507
	DECR_WRAP = 0x8508

	DEPTH_BUFFER_BIT   = 0x00000100
	STENCIL_BUFFER_BIT = 0x00000400
	COLOR_BUFFER_BIT   = 0x00004000

	POINTS         = 0x0000
	LINES          = 0x0001
	LINE_STRIP     = 0x0003
	TRIANGLES      = 0x0004
	TRIANGLE_STRIP = 0x0005

	BYTE              = 0x1400
	UNSIGNED_BYTE     = 0x1401
	SHORT             = 0x1402
	UNSIGNED_SHORT    = 0x1403
	INT               = 0x1404
	UNSIGNED_INT      = 0x1405
	FLOAT             = 0x1406
	HALF_FLOAT        = 0x140B
	UNSIGNED_INT_24_8 = 0x84FA

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	STREAM_DRAW          = 0x88E0
	STATIC_DRAW          = 0x88E4
	DYNAMIC_DRAW         = 0x88E8

	FRAGMENT_SHADER             = 0x8B30
	VERTEX_SHADER               = 0x8B31
	COMPILE_STATUS              = 0x8B81
	LINK_STATUS                 = 0x8B82
	INFO_LOG_LENGTH             = 0x8B84
	SHADER_BINARY_FORMAT_SPIR_V = 0x9551

	TEXTURE_2D                  = 0x0DE1
	TEXTURE_CUBE_MAP            = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X = 0x8515
	TEXTURE_2D_ARRAY            = 0x8C1A
	TEXTURE0                    = 0x84C0
	TEXTURE_MAG_FILTER          = 0x2800
	TEXTURE_MIN_FILTER          = 0x2801
	TEXTURE_WRAP_S              = 0x2802
	TEXTURE_WRAP_T              = 0x2803
	TEXTURE_WRAP_R              = 0x8072
	TEXTURE_BASE_LEVEL          = 0x813C
	TEXTURE_MAX_LEVEL           = 0x813D
	TEXTURE_LOD_BIAS            = 0x8501
	TEXTURE_MAX_ANISOTROPY_EXT  = 0x84FE
	TEXTURE_COMPARE_MODE        = 0x884C
	TEXTURE_COMPARE_FUNC        = 0x884D
	COMPARE_REF_TO_TEXTURE      = 0x884E

	NEAREST                = 0x2600
	LINEAR                 = 0x2601
	NEAREST_MIPMAP_NEAREST = 0x2700
	LINEAR_MIPMAP_NEAREST  = 0x2701
	NEAREST_MIPMAP_LINEAR  = 0x2702
	LINEAR_MIPMAP_LINEAR   = 0x2703
	REPEAT                 = 0x2901
	CLAMP_TO_EDGE          = 0x812F
	MIRRORED_REPEAT        = 0x8370

	RED                = 0x1903
	RGB                = 0x1907
	RGBA               = 0x1908
	BGRA               = 0x80E1
	RG                 = 0x8227
	R8                 = 0x8229
	R32F               = 0x822E
	RG32F              = 0x8230
	RGBA8              = 0x8058
	RGBA32F            = 0x8814
	SRGB8_ALPHA8       = 0x8C43
	DEPTH_COMPONENT    = 0x1902
	DEPTH_COMPONENT16  = 0x81A5
	DEPTH_COMPONENT24  = 0x81A6
	DEPTH_COMPONENT32F = 0x8CAC
	DEPTH_STENCIL      = 0x84F9
	DEPTH24_STENCIL8   = 0x88F0
	STENCIL_INDEX8     = 0x8D48

	FRAMEBUFFER              = 0x8D40
	READ_FRAMEBUFFER         = 0x8CA8
	DRAW_FRAMEBUFFER         = 0x8CA9
	RENDERBUFFER             = 0x8D41
	COLOR_ATTACHMENT0        = 0x8CE0
	DEPTH_ATTACHMENT         = 0x8D00
	STENCIL_ATTACHMENT       = 0x8D20
	DEPTH_STENCIL_ATTACHMENT = 0x821A

	FRAMEBUFFER_COMPLETE                      = 0x8CD5
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT         = 0x8CD6
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT = 0x8CD7
	FRAMEBUFFER_INCOMPLETE_DIMENSIONS         = 0x8CD9
	FRAMEBUFFER_UNSUPPORTED                   = 0x8CDD
	FRAMEBUFFER_INCOMPLETE_MULTISAMPLE        = 0x8D56
	FRAMEBUFFER_UNDEFINED                     = 0x8219

	VENDOR                         = 0x1F00
	RENDERER                       = 0x1F01
	VERSION                        = 0x1F02
	EXTENSIONS                     = 0x1F03
	MAX_TEXTURE_IMAGE_UNITS        = 0x8872
	MAX_VERTEX_TEXTURE_IMAGE_UNITS = 0x8B4C
	MAX_VERTEX_ATTRIBS             = 0x8869
	MAX_DRAW_BUFFERS               = 0x8824
	MAX_COLOR_ATTACHMENTS          = 0x8CDF
	MAX_SAMPLES                    = 0x8D57
)
